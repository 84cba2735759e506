package event

// Payload is the variant-specific part of an Event. The set of payloads is
// closed; switch on the concrete type to inspect one.
type Payload interface {
	Name() string
	payload()
}

// ===== LIFECYCLE =====

type PlayerJoin struct{}

type GameStart struct{}

type FinishedLoading struct{}

// PlayerLeave is zero valued on builds that do not record a leave reason.
type PlayerLeave struct {
	Reason uint8
}

// ===== ACTIONS =====

// Point is a map position in the units the stream stores.
type Point struct {
	X, Y, Z int32
}

// TargetKind says what an ability was aimed at
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetPoint
	TargetUnit
	TargetData
)

// UnitTarget describes a targeted unit
type UnitTarget struct {
	Flags  uint8
	Timer  uint8
	Player uint8
	ID     uint32
	Type   uint32
	Point  Point
}

// Ability is a command issued to the selection.
type Ability struct {
	Code    uint32
	Label   string // filled by the name resolver; "Unknown(0x......)" on a miss
	SubType uint8  // legacy sub-type byte
	Flags   uint32 // bit-packed command flags
	Target  TargetKind
	Point   *Point
	Unit    *UnitTarget
	Data    uint32
	Queued  []byte // queued-order block of legacy abilities
}

// DeselectType is how a selection change removes units
type DeselectType uint8

const (
	DeselectNone        DeselectType = 0
	DeselectMask        DeselectType = 1
	DeselectOneIndices  DeselectType = 2
	DeselectZeroIndices DeselectType = 3
)

// Deselect holds the removal part of a selection change. Mask bits are
// packed least significant first per byte, as the stream stores them.
type Deselect struct {
	Type     DeselectType
	MaskBits int
	Mask     []byte
	Indices  []uint16
}

// UnitTypeCount is one entry of the added-unit type list
type UnitTypeCount struct {
	Type  uint32
	Count uint16
}

type Selection struct {
	Bank     uint8
	Lead     uint8
	Deselect Deselect
	Types    []UnitTypeCount
	UnitIDs  []uint32
}

// HotkeyAction is what a control-group event does
type HotkeyAction uint8

const (
	HotkeySet    HotkeyAction = 0
	HotkeyAdd    HotkeyAction = 1
	HotkeySelect HotkeyAction = 2
	HotkeyClear  HotkeyAction = 3
)

type Hotkey struct {
	Group   uint8
	Action  HotkeyAction
	Flags   uint8     // legacy second byte
	Overlay []byte    // legacy overlay mask bytes
	Extra   []byte    // legacy trailing bytes
	Mask    *Deselect // bit-packed removal mask
}

type CameraMove struct {
	Target   *Point
	Distance *uint16
	Pitch    *uint16
	Yaw      *uint16
}

type ResourceTransfer struct {
	Recipient uint8
	Minerals  int64
	Vespene   int64
	Terrazine int64
	Custom    int64
}

// Opaque is an event whose payload is skipped by length
type Opaque struct {
	Raw []byte
}

// ===== MESSAGES =====

type Chat struct {
	Target uint8
	Text   string
}

type Ping struct {
	X, Y int32
}

type Packet struct {
	Data []byte
}

// ===== TRACKER =====

// UnitTag combines a unit index and its recycle counter
func UnitTag(index, recycle int64) uint32 {
	return uint32(index<<18 | recycle)
}

type PlayerStats struct {
	Player int
	Stats  map[int64]int64
}

type UnitBorn struct {
	UnitID        uint32
	UnitType      string
	ControlPlayer int
	UpkeepPlayer  int
	X, Y          int
}

// UnitDied has KillerPlayer -1 and KillerUnitID 0 when the killer is unknown.
type UnitDied struct {
	UnitID       uint32
	KillerPlayer int
	KillerUnitID uint32
	X, Y         int
}

type UnitOwnerChange struct {
	UnitID        uint32
	ControlPlayer int
	UpkeepPlayer  int
}

type UnitTypeChange struct {
	UnitID   uint32
	UnitType string
}

type Upgrade struct {
	Player  int
	Upgrade string
	Count   int
}

type UnitInit struct {
	UnitID        uint32
	UnitType      string
	ControlPlayer int
	UpkeepPlayer  int
	X, Y          int
}

type UnitDone struct {
	UnitID uint32
}

type UnitPosition struct {
	Index int
	X, Y  int
}

type UnitPositions struct {
	FirstIndex int
	Positions  []UnitPosition
}

// PlayerSetup has UserID and SlotID -1 when absent.
type PlayerSetup struct {
	Player int
	Type   int
	UserID int
	SlotID int
}

// ===== ATTRIBUTES =====

type Attribute struct {
	Namespace uint32
	ID        uint32
	Value     string
}

func (PlayerJoin) Name() string       { return "PlayerJoin" }
func (GameStart) Name() string        { return "GameStart" }
func (FinishedLoading) Name() string  { return "FinishedLoading" }
func (PlayerLeave) Name() string      { return "PlayerLeave" }
func (Ability) Name() string          { return "Ability" }
func (Selection) Name() string        { return "Selection" }
func (Hotkey) Name() string           { return "Hotkey" }
func (CameraMove) Name() string       { return "CameraMove" }
func (ResourceTransfer) Name() string { return "ResourceTransfer" }
func (Opaque) Name() string           { return "Opaque" }
func (Chat) Name() string             { return "Chat" }
func (Ping) Name() string             { return "Ping" }
func (Packet) Name() string           { return "Packet" }
func (PlayerStats) Name() string      { return "PlayerStats" }
func (UnitBorn) Name() string         { return "UnitBorn" }
func (UnitDied) Name() string         { return "UnitDied" }
func (UnitOwnerChange) Name() string  { return "UnitOwnerChange" }
func (UnitTypeChange) Name() string   { return "UnitTypeChange" }
func (Upgrade) Name() string          { return "Upgrade" }
func (UnitInit) Name() string         { return "UnitInit" }
func (UnitDone) Name() string         { return "UnitDone" }
func (UnitPositions) Name() string    { return "UnitPositions" }
func (PlayerSetup) Name() string      { return "PlayerSetup" }
func (Attribute) Name() string        { return "Attribute" }

func (PlayerJoin) payload()       {}
func (GameStart) payload()        {}
func (FinishedLoading) payload()  {}
func (PlayerLeave) payload()      {}
func (Ability) payload()          {}
func (Selection) payload()        {}
func (Hotkey) payload()           {}
func (CameraMove) payload()       {}
func (ResourceTransfer) payload() {}
func (Opaque) payload()           {}
func (Chat) payload()             {}
func (Ping) payload()             {}
func (Packet) payload()           {}
func (PlayerStats) payload()      {}
func (UnitBorn) payload()         {}
func (UnitDied) payload()         {}
func (UnitOwnerChange) payload()  {}
func (UnitTypeChange) payload()   {}
func (Upgrade) payload()          {}
func (UnitInit) payload()         {}
func (UnitDone) payload()         {}
func (UnitPositions) payload()    {}
func (PlayerSetup) payload()      {}
func (Attribute) payload()        {}
