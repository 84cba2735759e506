package stream

import (
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/schema"
)

// RegisterBuiltins installs the decoders for every known sub-stream. Rules
// are registered general first, so the narrower rules that follow win.
func RegisterBuiltins(events *registry.Registry[EventDecoder], values *registry.Registry[ValueDecoder], opts Options) error {
	set, err := schema.Builtin()
	if err != nil {
		return err
	}

	events.Register(StreamGame, registry.BuildBelow(BuildBitPacked), NewLegacyGameDecoder(opts))
	events.Register(StreamGame, registry.BuildAtLeast(BuildBitPacked), newBitPackedGameDecoder(opts, profileWoL))
	events.Register(StreamGame, registry.BuildAtLeast(BuildHotS), newBitPackedGameDecoder(opts, profileHotS))
	events.Register(StreamGame, registry.BuildAtLeast(BuildLotV), newBitPackedGameDecoder(opts, profileLotV))

	events.Register(StreamMessages, registry.Always(), NewMessageDecoder(opts, 3))
	events.Register(StreamMessages, registry.BuildAtLeast(BuildHotS), NewMessageDecoder(opts, 4))

	events.Register(StreamAttributes, registry.Always(), NewAttributeDecoder(opts, 4))
	events.Register(StreamAttributes, registry.BuildAtLeast(BuildAttributeHeader5), NewAttributeDecoder(opts, 5))

	events.Register(StreamTracker, registry.BuildAtLeast(BuildTracker), NewTrackerDecoder(opts))

	values.Register(StreamDetails, registry.Always(), NewDocumentDecoder(opts, set, "Details"))
	values.Register(StreamInitData, registry.Always(), NewDocumentDecoder(opts, set, "InitData"))
	return nil
}
