package gqljson

// Locate returns every object in v whose `__typename` equals typename, in pre-order: a matching
// object comes before any matches nested inside it, objects are visited in key order and arrays
// in index order. A match is not excluded from the walk, its descendants are searched as well.
func Locate(v Value, typename string) []Value {
	var out []Value
	locate(v, typename, &out)
	return out
}

func locate(v Value, typename string, out *[]Value) {
	switch v.kind {
	case Object:
		if v.Typename() == typename {
			*out = append(*out, v)
		}
		for _, key := range v.keys {
			locate(v.fields[key], typename, out)
		}
	case Array:
		for _, item := range v.items {
			locate(item, typename, out)
		}
	}
}

