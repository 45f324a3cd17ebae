// Package bridge serializes a graphir.Graph to and from the JSON
// envelope used to carry graphs across process boundaries:
// har.parse writes one, har.transform reads one back.
package bridge

import (
	"encoding/json"
	"io"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

// vertexJSON mirrors graphir.Operation's on-wire shape.
type vertexJSON struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Params   map[string]interface{} `json:"params"`
	Target   map[string]interface{} `json:"target"`
	Metadata map[string]interface{} `json:"metadata"`
}

// edgeJSON mirrors graphir.Dependency's on-wire shape.
type edgeJSON struct {
	From     string                 `json:"from"`
	To       string                 `json:"to"`
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata"`
}

// envelope is the top-level { vertices, edges, metadata } document.
type envelope struct {
	Vertices []vertexJSON           `json:"vertices"`
	Edges    []edgeJSON             `json:"edges"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Encode writes g's JSON envelope to w.
func Encode(w io.Writer, g *graphir.Graph) error {
	env := toEnvelope(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return harerr.Wrap(harerr.BridgeDecodeError, "encoding graph envelope", err)
	}
	return nil
}

// Marshal returns g's JSON envelope as a byte slice.
func Marshal(g *graphir.Graph) ([]byte, error) {
	env := toEnvelope(g)
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, harerr.Wrap(harerr.BridgeDecodeError, "marshaling graph envelope", err)
	}
	return data, nil
}

// Decode reads a JSON envelope from r and reconstructs a Graph.
func Decode(r io.Reader) (*graphir.Graph, error) {
	var env envelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, harerr.Wrap(harerr.BridgeDecodeError, "decoding graph envelope", err)
	}
	return fromEnvelope(env), nil
}

// Unmarshal reconstructs a Graph from a JSON envelope byte slice.
func Unmarshal(data []byte) (*graphir.Graph, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, harerr.Wrap(harerr.BridgeDecodeError, "unmarshaling graph envelope", err)
	}
	return fromEnvelope(env), nil
}

func toEnvelope(g *graphir.Graph) envelope {
	ops := g.Operations()
	deps := g.Dependencies()

	env := envelope{
		Vertices: make([]vertexJSON, len(ops)),
		Edges:    make([]edgeJSON, len(deps)),
		Metadata: g.Metadata(),
	}
	for i, op := range ops {
		env.Vertices[i] = vertexJSON{
			ID:       op.ID,
			Type:     string(op.Type),
			Params:   op.Params,
			Target:   op.Target,
			Metadata: op.Metadata,
		}
	}
	for i, d := range deps {
		env.Edges[i] = edgeJSON{
			From:     d.From,
			To:       d.To,
			Type:     string(d.Type),
			Metadata: d.Metadata,
		}
	}
	return env
}

func fromEnvelope(env envelope) *graphir.Graph {
	ops := make([]*graphir.Operation, len(env.Vertices))
	for i, v := range env.Vertices {
		ops[i] = &graphir.Operation{
			ID:       v.ID,
			Type:     graphir.OperationType(v.Type),
			Params:   nonNilMap(v.Params),
			Target:   nonNilMap(v.Target),
			Metadata: nonNilMap(v.Metadata),
		}
	}
	deps := make([]*graphir.Dependency, len(env.Edges))
	for i, e := range env.Edges {
		deps[i] = &graphir.Dependency{
			From:     e.From,
			To:       e.To,
			Type:     graphir.DependencyType(e.Type),
			Metadata: nonNilMap(e.Metadata),
		}
	}
	return graphir.New(ops, deps, env.Metadata)
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
