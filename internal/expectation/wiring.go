package expectation

// FeederWiring describes how an endpoint is attached to a transport.
// The merge logic never inspects it beyond binding the endpoint identity
// on the first part; transports read Transport and Options.
type FeederWiring struct {
	// Endpoint is bound to the part's endpoint identity when the first part is built
	Endpoint string
	// Transport selects the transport ("mcp", "nats"); empty means the runtime default
	Transport string
	// Options carries transport specific settings such as a NATS queue group
	Options map[string]string
}

// DefaultFeederWiring returns the wiring used when the first part of an
// endpoint does not supply one.
func DefaultFeederWiring() *FeederWiring {
	return &FeederWiring{}
}

// Option returns a transport option, or "" when unset.
func (w *FeederWiring) Option(key string) string {
	if w == nil || w.Options == nil {
		return ""
	}
	return w.Options[key]
}

func (w *FeederWiring) clone() *FeederWiring {
	if w == nil {
		return nil
	}
	c := &FeederWiring{
		Endpoint:  w.Endpoint,
		Transport: w.Transport,
	}
	if w.Options != nil {
		c.Options = make(map[string]string, len(w.Options))
		for k, v := range w.Options {
			c.Options[k] = v
		}
	}
	return c
}

// from returns a copy of the wiring listening on endpoint.
func (w *FeederWiring) from(endpoint string) *FeederWiring {
	c := w.clone()
	c.Endpoint = endpoint
	return c
}
