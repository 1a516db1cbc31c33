package api

import (
	"encoding/json"
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/signalmaster/signal-engine/internal/types"
)

// toJSONSchema converts a struct to an inline JSON schema.
func toJSONSchema[T any](t T) (json.RawMessage, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	return json.Marshal(schema)
}

// handleIndicatorSchema serves the schema clients use to render the
// indicator configuration form.
func (s *Server) handleIndicatorSchema(w http.ResponseWriter, _ *http.Request) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	schema, err := toJSONSchema(types.IndicatorSpec{})
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"indicator_spec": schema,
		"types": []types.IndicatorType{
			types.IndicatorTypeRSI,
			types.IndicatorTypeSMA,
			types.IndicatorTypeEMA,
			types.IndicatorTypeMACD,
			types.IndicatorTypeBollinger,
			types.IndicatorTypeStochastic,
		},
	})
}
