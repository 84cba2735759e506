// Package sc2reader decodes the binary sub-streams of StarCraft II replays
// into ordered events. Archive extraction is left to the caller: a Replay
// holds the already extracted sub-stream bytes.
package sc2reader

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/stream"
)

// ===== INPUT AND OUTPUT =====

// Replay is the set of extracted sub-streams of one replay, keyed by
// archive name (stream.StreamGame and friends).
type Replay struct {
	Expansion registry.Expansion
	Build     int
	Streams   map[string][]byte
}

// Version returns the registry lookup key of the replay
func (r Replay) Version() registry.Version {
	return registry.Version{Expansion: r.Expansion, Build: r.Build}
}

// Result holds everything Decode produced.
type Result struct {
	ID        ulid.ULID
	Version   registry.Version
	Events    map[string][]event.Event
	Documents map[string]*stream.Document
	Timeline  []event.Event // all events, stable by frame
}

// Names resolves static game data. A miss reports false.
type Names interface {
	AbilityName(code uint32) (string, bool)
	UnitName(unitType uint32) (string, bool)
}

// timelineOrder breaks frame ties in the merged timeline
var timelineOrder = []string{
	stream.StreamAttributes,
	stream.StreamGame,
	stream.StreamMessages,
	stream.StreamTracker,
}

// ===== DECODER =====

// Decoder dispatches sub-streams to the decoder registered for the
// replay's version. Register all custom decoders before decoding; after
// that a Decoder is safe for concurrent use.
type Decoder struct {
	cfg    Config
	logger zerolog.Logger
	events *registry.Registry[stream.EventDecoder]
	values *registry.Registry[stream.ValueDecoder]
	names  Names
}

// New creates a Decoder with the default configuration
func New() (*Decoder, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Decoder with the built-in stream decoders
func NewWithConfig(cfg Config) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Decoder{
		cfg:    cfg,
		logger: log.Logger.Level(cfg.level()),
		events: registry.NewRegistry[stream.EventDecoder](),
		values: registry.NewRegistry[stream.ValueDecoder](),
	}
	if err := stream.RegisterBuiltins(d.events, d.values, cfg.options(d.logger)); err != nil {
		return nil, fmt.Errorf("register builtin decoders: %w", err)
	}
	return d, nil
}

// WithNames sets the name resolver used for ability names
func (d *Decoder) WithNames(n Names) *Decoder {
	d.names = n
	return d
}

// WithLogger replaces the logger of the decoder. Built-in stream decoders
// keep the logger they were created with.
func (d *Decoder) WithLogger(l zerolog.Logger) *Decoder {
	d.logger = l
	return d
}

// Register adds an event decoder rule. It takes precedence over every rule
// registered before it for the same stream.
func (d *Decoder) Register(name string, pred registry.Predicate, dec stream.EventDecoder) {
	d.events.Register(name, pred, dec)
}

// RegisterValue adds a struct-tree stream decoder rule
func (d *Decoder) RegisterValue(name string, pred registry.Predicate, dec stream.ValueDecoder) {
	d.values.Register(name, pred, dec)
}

// DecodeStream decodes one event stream. On failure the events decoded so
// far are returned with the error.
func (d *Decoder) DecodeStream(name string, data []byte, v registry.Version) ([]event.Event, error) {
	dec, err := d.events.Resolve(name, v)
	if err != nil {
		return nil, err
	}
	events, err := dec.DecodeEvents(data, v)
	d.resolveNames(events)
	if err != nil {
		return events, fmt.Errorf("%s: %w", name, err)
	}
	return events, nil
}

// DecodeValue decodes one struct-tree stream such as replay.details
func (d *Decoder) DecodeValue(name string, data []byte, v registry.Version) (*stream.Document, error) {
	dec, err := d.values.Resolve(name, v)
	if err != nil {
		return nil, err
	}
	doc, err := dec.DecodeValue(data, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// Decode decodes every sub-stream of the replay that has a decoder,
// running up to Config.Parallelism streams at once. Streams nothing is
// registered for are skipped. The first failure cancels the streams that
// have not started and is returned without a result.
func (d *Decoder) Decode(ctx context.Context, replay Replay) (*Result, error) {
	res := &Result{
		ID:        ulid.Make(),
		Version:   replay.Version(),
		Events:    make(map[string][]event.Event),
		Documents: make(map[string]*stream.Document),
	}
	logger := d.logger.With().Str("decode_id", res.ID.String()).Int("build", replay.Build).Logger()

	names := make([]string, 0, len(replay.Streams))
	for name := range replay.Streams {
		names = append(names, name)
	}
	sort.Strings(names)

	type output struct {
		decoded bool
		events  []event.Event
		doc     *stream.Document
	}
	outputs := make([]output, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Parallelism)
	for i, name := range names {
		i, name := i, name
		isEvents, isValue := d.events.Has(name), d.values.Has(name)
		if !isEvents && !isValue {
			logger.Debug().Str("stream", name).Msg("no decoder registered, skipping")
			continue
		}

		data := replay.Streams[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if isValue {
				doc, err := d.DecodeValue(name, data, res.Version)
				if err != nil {
					return err
				}
				outputs[i] = output{decoded: true, doc: doc}
				return nil
			}
			events, err := d.DecodeStream(name, data, res.Version)
			if err != nil {
				return err
			}
			outputs[i] = output{decoded: true, events: events}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Debug().Err(err).Msg("replay decode failed")
		return nil, err
	}

	for i, name := range names {
		out := outputs[i]
		switch {
		case !out.decoded:
		case out.doc != nil:
			res.Documents[name] = out.doc
		default:
			res.Events[name] = out.events
		}
	}
	res.Timeline = mergeTimeline(res.Events)

	logger.Debug().Int("streams", len(res.Events)+len(res.Documents)).Int("events", len(res.Timeline)).Msg("replay decoded")
	return res, nil
}

// ===== NAMES =====

// AbilityName returns the name of an ability code or a placeholder
func (d *Decoder) AbilityName(code uint32) string {
	if d.names != nil {
		if name, ok := d.names.AbilityName(code); ok {
			return name
		}
	}
	return unknownName(code)
}

// UnitName returns the name of a unit type or a placeholder
func (d *Decoder) UnitName(unitType uint32) string {
	if d.names != nil {
		if name, ok := d.names.UnitName(unitType); ok {
			return name
		}
	}
	return unknownName(unitType)
}

func (d *Decoder) resolveNames(events []event.Event) {
	for i := range events {
		if a, ok := events[i].Payload.(event.Ability); ok && a.Label == "" {
			a.Label = d.AbilityName(a.Code)
			events[i].Payload = a
		}
	}
}

func unknownName(code uint32) string {
	return fmt.Sprintf("Unknown(0x%06X)", code)
}

// ===== UTILITY FUNCTIONS =====

// mergeTimeline concatenates the event streams in timelineOrder, then any
// other stream by name, and sorts the result stably by frame.
func mergeTimeline(events map[string][]event.Event) []event.Event {
	order := slices.Clone(timelineOrder)
	var extra []string
	for name := range events {
		if !slices.Contains(timelineOrder, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	var out []event.Event
	for _, name := range order {
		out = append(out, events[name]...)
	}
	slices.SortStableFunc(out, func(a, b event.Event) int {
		return cmp.Compare(a.Frame, b.Frame)
	})
	return out
}
