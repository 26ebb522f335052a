package catalog

import (
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/benefits-network/benefits-bpp/bpp/models"
)

type serializable interface {
	Serialize() (string, error)
}

// tagGroup returns nil for an empty collection. A group is never emitted without items.
func tagGroup[T serializable](code, name string, elems []T, describe func(T) models.Descriptor) (*models.TagGroup, error) {
	if len(elems) == 0 {
		return nil, nil
	}

	group := &models.TagGroup{
		Display:    true,
		Descriptor: models.Descriptor{Code: code, Name: name},
		List:       make([]models.TagItem, 0, len(elems)),
	}
	for i, elem := range elems {
		value, err := elem.Serialize()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to serialize %s element %d", code, i)
		}
		group.List = append(group.List, models.TagItem{
			Descriptor: describe(elem),
			Value:      value,
			Display:    true,
		})
	}
	return group, nil
}

func EligibilityTags(eligibility []models.Eligibility) (*models.TagGroup, error) {
	return tagGroup("eligibility", "Eligibility", eligibility, func(e models.Eligibility) models.Descriptor {
		return models.Descriptor{
			Code:      e.Evidence,
			Name:      capitalize(e.Type) + " - " + e.Evidence,
			ShortDesc: e.Description,
		}
	})
}

func DocumentTags(documents []models.Document) (*models.TagGroup, error) {
	return tagGroup("required-docs", "Required Documents", documents, func(d models.Document) models.Descriptor {
		if d.IsRequired {
			return models.Descriptor{Code: "mandatory-doc", Name: "Mandatory Document"}
		}
		return models.Descriptor{Code: "optional-doc", Name: "Optional Document"}
	})
}

func BenefitTags(lines []models.BenefitLine) (*models.TagGroup, error) {
	return tagGroup("benefits", "Benefits", lines, func(b models.BenefitLine) models.Descriptor {
		return models.Descriptor{Code: "financial", Name: b.Title}
	})
}

func ExclusionTags(exclusions []models.Exclusion) (*models.TagGroup, error) {
	return tagGroup("exclusions", "Exclusions", exclusions, func(models.Exclusion) models.Descriptor {
		return models.Descriptor{Code: "ineligibility", Name: "Ineligibility Condition"}
	})
}

func SponsoringEntityTags(entities []models.Entity) (*models.TagGroup, error) {
	return tagGroup("sponsoringEntities", "Sponsoring Entities", entities, func(models.Entity) models.Descriptor {
		return models.Descriptor{Code: "sponsoringEntities", Name: "Entities Sponsoring Benefits"}
	})
}

func ApplicationFormTags(fields []models.FormField) (*models.TagGroup, error) {
	return tagGroup("applicationForm", "Application Form", fields, func(models.FormField) models.Descriptor {
		return models.Descriptor{Code: "applicationForm", Name: "Application Form"}
	})
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
