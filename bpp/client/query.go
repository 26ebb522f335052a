package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// QueryParam is a top level listing parameter. Parameters are written in the order given.
type QueryParam struct {
	Key   string
	Value interface{}
}

// EncodeQuery writes params in the bracket notation the content manager expects:
// nested objects become key[child]=value and arrays key[]=value. Keys are written
// as is and values are query escaped. Nested object keys are sorted.
func EncodeQuery(params []QueryParam) string {
	var parts []string
	for _, p := range params {
		parts = appendQuery(parts, p.Key, p.Value)
	}
	return strings.Join(parts, "&")
}

func appendQuery(parts []string, key string, value interface{}) []string {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = appendQuery(parts, key+"["+k+"]", v[k])
		}
		return parts
	case []interface{}:
		for _, elem := range v {
			parts = appendQuery(parts, key+"[]", elem)
		}
		return parts
	case []string:
		for _, elem := range v {
			parts = appendQuery(parts, key+"[]", elem)
		}
		return parts
	}
	return append(parts, key+"="+url.QueryEscape(scalar(value)))
}

func scalar(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}
