package expr

import (
	"encoding/json"
	"fmt"

	"texest/internal/value"
)

// toGoValue converts the tagged-union Value into plain Go interface{} data
// (map[string]interface{}/[]interface{}/scalars) suitable for encoding/json,
// which backs the $yaml/$json expression helpers' canonical serialization.
func toGoValue(v value.Value) (interface{}, error) {
	switch v.Kind {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		return v.Bool, nil
	case value.KindInt:
		return v.Int, nil
	case value.KindUint:
		return v.Uint, nil
	case value.KindFloat:
		return v.Float, nil
	case value.KindString:
		return v.String, nil
	case value.KindSeq:
		out := make([]interface{}, len(v.Seq))
		for i, item := range v.Seq {
			converted, err := toGoValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case value.KindMap:
		out := make(map[string]interface{}, v.Map.Len())
		for _, k := range v.Map.Keys() {
			item, _ := v.Map.Get(k)
			converted, err := toGoValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %v", v.Kind)
	}
}

func marshalJSONBytes(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
