package easyship

import (
	"fmt"
	"sort"
	"strconv"
)

// Params is a request payload. GET requests encode it as a query string,
// every other method sends it as a JSON body.
type Params map[string]any

// EncodeQuery flattens params into query pairs using bracket notation for
// nested values: {"a": {"b": 1}} becomes a[b]=1 and {"ids": [1, 2]} becomes
// ids[0]=1&ids[1]=2. Nil values are dropped and booleans become 1 or 0.
func EncodeQuery(params Params) map[string]string {
	out := map[string]string{}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		flattenQueryValue(out, key, params[key])
	}
	return out
}

func flattenQueryValue(out map[string]string, prefix string, value any) {
	switch typed := value.(type) {
	case nil:
	case Params:
		flattenQueryMap(out, prefix, typed)
	case map[string]any:
		flattenQueryMap(out, prefix, typed)
	case map[string]string:
		for key, item := range typed {
			out[prefix+"["+key+"]"] = item
		}
	case []any:
		for index, item := range typed {
			flattenQueryValue(out, prefix+"["+strconv.Itoa(index)+"]", item)
		}
	case []string:
		for index, item := range typed {
			out[prefix+"["+strconv.Itoa(index)+"]"] = item
		}
	case []int:
		for index, item := range typed {
			out[prefix+"["+strconv.Itoa(index)+"]"] = strconv.Itoa(item)
		}
	case bool:
		if typed {
			out[prefix] = "1"
		} else {
			out[prefix] = "0"
		}
	case string:
		out[prefix] = typed
	case float64:
		out[prefix] = strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		out[prefix] = strconv.FormatFloat(float64(typed), 'f', -1, 32)
	default:
		out[prefix] = fmt.Sprint(typed)
	}
}

func flattenQueryMap(out map[string]string, prefix string, values map[string]any) {
	for key, item := range values {
		flattenQueryValue(out, prefix+"["+key+"]", item)
	}
}
