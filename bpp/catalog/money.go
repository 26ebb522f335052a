package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/bpp/models"
)

var amountPattern = regexp.MustCompile(`₹([\d,]+)`)

// TotalBenefitValue sums every rupee amount (₹12,000 style) found in the line descriptions.
// Lines without an amount contribute nothing, so the total is "0" when no amount is found.
func TotalBenefitValue(lines []models.BenefitLine) (string, error) {
	var total int64
	for _, line := range lines {
		for _, match := range amountPattern.FindAllStringSubmatch(line.Description, -1) {
			amount, err := strconv.ParseInt(strings.ReplaceAll(match[1], ",", ""), 10, 64)
			if err != nil {
				return "", &bpperrors.InvalidInputError{
					Msg: fmt.Sprintf("malformed amount %q in benefit %q", match[0], line.Title),
					Err: err,
				}
			}
			if amount > math.MaxInt64-total {
				return "", &bpperrors.InvalidInputError{Msg: fmt.Sprintf("benefit amounts overflow at %q in benefit %q", match[0], line.Title)}
			}
			total += amount
		}
	}
	return strconv.FormatInt(total, 10), nil
}
