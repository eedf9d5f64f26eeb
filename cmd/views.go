package cmd

import (
	"github.com/mitchellh/mapstructure"

	"github.com/lexia/kurai/lexia"
)

// Typed views over the parts of API payloads the text output shows.
// Everything else is only visible with --output json or yaml.

type areaView struct {
	ID   int64  `mapstructure:"id"`
	Name string `mapstructure:"nombre"`
}

type documentView struct {
	ID          int64  `mapstructure:"id"`
	Name        string `mapstructure:"nombre"`
	Status      string `mapstructure:"status"`
	AreaID      int64  `mapstructure:"area_id"`
	Description string `mapstructure:"description"`
}

type queueItemView struct {
	ID        string `mapstructure:"id"`
	Queue     string `mapstructure:"queue_name"`
	Reference string `mapstructure:"reference"`
	Priority  string `mapstructure:"priority"`
	Status    string `mapstructure:"status"`
}

type analyticsView struct {
	Period  string `mapstructure:"period"`
	Summary struct {
		TotalItems     int64 `mapstructure:"total_items"`
		PendingItems   int64 `mapstructure:"pending_items"`
		ProcessedItems int64 `mapstructure:"processed_items"`
		FailedItems    int64 `mapstructure:"failed_items"`
	} `mapstructure:"summary"`
}

// decodeView decodes a generic value into a view, converting numbers and
// strings as needed. Unknown fields are ignored.
func decodeView(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func decodeAreas(result lexia.Object) ([]areaView, error) {
	var areas []areaView
	if err := decodeView(result["areas"], &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

// nestedObject returns result[key] when it is an object, else result itself
func nestedObject(result lexia.Object, key string) map[string]any {
	if inner, ok := result[key].(map[string]any); ok {
		return inner
	}
	return result
}
