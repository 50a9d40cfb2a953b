package card

import (
	"fmt"
	"strings"
)

// Kind is the printed variant of a card.
type Kind int

const (
	KindUnknown Kind = iota
	KindCharacter
	KindAttack
	KindFoundation
	KindAction
	KindAsset
	KindBackup
)

var kindNames = map[Kind]string{
	KindCharacter:  "CHARACTER",
	KindAttack:     "ATTACK",
	KindFoundation: "FOUNDATION",
	KindAction:     "ACTION",
	KindAsset:      "ASSET",
	KindBackup:     "BACKUP",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// Valid reports whether k is one of the printed variants.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind converts a variant name such as "foundation" into a Kind.
func ParseKind(s string) (Kind, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == want {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown card kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown card kind %d", int(k))
	}
	return []byte(strings.ToLower(k.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// BlockZone is the height an attack travels at or a block covers.
type BlockZone int

const (
	BlockNone BlockZone = iota
	BlockHigh
	BlockMid
	BlockLow
)

var blockZoneNames = map[BlockZone]string{
	BlockNone: "NONE",
	BlockHigh: "HIGH",
	BlockMid:  "MID",
	BlockLow:  "LOW",
}

func (b BlockZone) String() string {
	if name, ok := blockZoneNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BLOCK_ZONE_%d", int(b))
}

// ParseBlockZone converts "high", "mid", "low" or "" / "none" into a BlockZone.
func ParseBlockZone(s string) (BlockZone, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	if want == "" {
		return BlockNone, nil
	}
	for b, name := range blockZoneNames {
		if name == want {
			return b, nil
		}
	}
	return BlockNone, fmt.Errorf("unknown block zone %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (b BlockZone) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(b.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BlockZone) UnmarshalText(text []byte) error {
	parsed, err := ParseBlockZone(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Zone identifies which of a player's zones currently holds a card.
// The zero value is ZoneDeck, where every card starts.
type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZoneDiscard
	ZoneCardPool
	ZoneStaging
	ZonePlayArea
	ZoneRemoved
)

var zoneNames = map[Zone]string{
	ZoneDeck:     "DECK",
	ZoneHand:     "HAND",
	ZoneDiscard:  "DISCARD",
	ZoneCardPool: "CARD_POOL",
	ZoneStaging:  "STAGING",
	ZonePlayArea: "PLAY_AREA",
	ZoneRemoved:  "REMOVED",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// AllZones lists every zone in display order.
var AllZones = []Zone{
	ZoneDeck,
	ZoneHand,
	ZoneDiscard,
	ZoneCardPool,
	ZoneStaging,
	ZonePlayArea,
	ZoneRemoved,
}
