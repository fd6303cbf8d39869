package weather

import (
	"fmt"
	"strings"

	"wunderground-monitor/internal/jsonpath"
)

// decodeOne runs fn against the document root and fails the model on the
// first missing or mistyped field.
func decodeOne[T any](model string, doc any, fn func(root jsonpath.Node) T) (T, error) {
	root := jsonpath.Root(doc)
	v := fn(root)
	if err := root.Err(); err != nil {
		var zero T
		return zero, &DecodeError{Model: model, Err: err}
	}
	return v, nil
}

func decodeList[T any](model string, doc any, opts DecodeOptions, keys []string, fn func(item jsonpath.Node) T) ([]T, error) {
	root := jsonpath.Root(doc)
	items := root.Elements(keys...)
	if err := root.Err(); err != nil {
		return nil, &DecodeError{Model: model, Err: err}
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		v := fn(item)
		if err := item.Err(); err != nil {
			if opts.Policy == Lenient {
				continue
			}
			return nil, &DecodeError{Model: model, Err: err}
		}
		out = append(out, v)
	}

	if len(out) == 0 {
		return nil, noData(model)
	}
	if opts.MinItems > 0 && len(out) < opts.MinItems {
		return nil, &DecodeError{Model: model, Err: &jsonpath.PathError{
			Path:   strings.Join(keys, "."),
			Reason: fmt.Sprintf("expected at least %d items, got %d", opts.MinItems, len(out)),
		}}
	}
	return out, nil
}
