package packet

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/lumenlabs/golight/common"
)

// MaxExtendedZones is the largest number of color records an extended color
// zones payload can carry.
const MaxExtendedZones = 82

// MatrixPixels is the number of pixels in a Set64/State64 frame.
const MatrixPixels = 64

// PaletteSize is the number of color slots in a tile effect palette.
const PaletteSize = 16

func putColor(buf []byte, c common.Color) {
	binary.LittleEndian.PutUint16(buf[0:2], c.Hue)
	binary.LittleEndian.PutUint16(buf[2:4], c.Saturation)
	binary.LittleEndian.PutUint16(buf[4:6], c.Brightness)
	binary.LittleEndian.PutUint16(buf[6:8], c.Kelvin)
}

func readColor(buf []byte) common.Color {
	return common.Color{
		Hue:        binary.LittleEndian.Uint16(buf[0:2]),
		Saturation: binary.LittleEndian.Uint16(buf[2:4]),
		Brightness: binary.LittleEndian.Uint16(buf[4:6]),
		Kelvin:     binary.LittleEndian.Uint16(buf[6:8]),
	}
}

func stripNull(s string) string {
	return strings.ReplaceAll(s, string(rune(0)), ``)
}

// ---------------------------------------------------------------------------
// Device payloads

// SetPowerPayload carries the SetPower level: 0 for off, 65535 for on.
type SetPowerPayload struct {
	Level uint16 `struc:"little"`
}

// StatePowerPayload is the response to GetPower.
type StatePowerPayload struct {
	Level uint16 `struc:"little"`
}

// SetLabelPayload carries a new device label.
type SetLabelPayload struct {
	Label [32]byte `struc:"little"`
}

// StateLabelPayload is the response to GetLabel.
type StateLabelPayload struct {
	Label [32]byte `struc:"little"`
}

// StateServicePayload advertises a service and its port during discovery.
type StateServicePayload struct {
	Service Service `struc:"little"`
	Port    uint32  `struc:"little"`
}

// StateVersionPayload is the response to GetVersion.
type StateVersionPayload struct {
	Vendor  uint32 `struc:"little"`
	Product uint32 `struc:"little"`
	Version uint32 `struc:"little"`
}

// StateHostFirmwarePayload is the response to GetHostFirmware.
type StateHostFirmwarePayload struct {
	Build        uint64 `struc:"little"`
	Reserved     uint64 `struc:"little"`
	VersionMinor uint16 `struc:"little"`
	VersionMajor uint16 `struc:"little"`
}

// StateWifiInfoPayload is the response to GetWifiInfo.  Signal is in
// milliwatts.
type StateWifiInfoPayload struct {
	Signal    float32 `struc:"little"`
	Reserved0 uint32  `struc:"little"`
	Reserved1 uint32  `struc:"little"`
	Reserved2 uint16  `struc:"little"`
}

// StateInfoPayload is the response to GetInfo; all values in nanoseconds.
type StateInfoPayload struct {
	Time     uint64 `struc:"little"`
	Uptime   uint64 `struc:"little"`
	Downtime uint64 `struc:"little"`
}

// StateLocationPayload is the response to GetLocation.
type StateLocationPayload struct {
	ID        [16]byte `struc:"little"`
	Label     [32]byte `struc:"little"`
	UpdatedAt uint64   `struc:"little"`
}

// StateGroupPayload is the response to GetGroup.
type StateGroupPayload struct {
	ID        [16]byte `struc:"little"`
	Label     [32]byte `struc:"little"`
	UpdatedAt uint64   `struc:"little"`
}

// StateInfraredPayload is the response to GetInfrared.
type StateInfraredPayload struct {
	Brightness uint16 `struc:"little"`
}

// ---------------------------------------------------------------------------
// Light payloads

// SetLightPowerPayload carries the SetLightPower level and transition
// duration in milliseconds.
type SetLightPowerPayload struct {
	Level    uint16 `struc:"little"`
	Duration uint32 `struc:"little"`
}

// SetColorPayload carries the SetColor color and transition duration in
// milliseconds.
type SetColorPayload struct {
	Reserved uint8        `struc:"little"`
	Color    common.Color
	Duration uint32       `struc:"little"`
}

// LightStatePayload is the response to GetColor.
type LightStatePayload struct {
	Color     common.Color
	Reserved0 int16        `struc:"little"`
	Power     uint16       `struc:"little"`
	Label     [32]byte     `struc:"little"`
	Reserved1 uint64       `struc:"little"`
}

// LabelString returns the label with trailing NUL padding removed.
func (p *LightStatePayload) LabelString() string {
	return stripNull(string(p.Label[:]))
}

// SetWaveformPayload carries a firmware waveform: the target color, cycle
// period in milliseconds, cycle count (fractional cycles allowed), and the
// duty-cycle skew for pulse shapes.
type SetWaveformPayload struct {
	Reserved  uint8        `struc:"little"`
	Transient uint8        `struc:"little"`
	Color     common.Color
	Period    uint32       `struc:"little"`
	Cycles    float32      `struc:"little"`
	SkewRatio int16        `struc:"little"`
	Waveform  Waveform     `struc:"little"`
}

// ---------------------------------------------------------------------------
// MultiZone payloads

// GetColorZonesPayload selects the zone range to query.
type GetColorZonesPayload struct {
	StartIndex uint8 `struc:"little"`
	EndIndex   uint8 `struc:"little"`
}

// Zone is one indexed zone color.
type Zone struct {
	Index int
	Color common.Color
}

// StateZonePayload is a single-zone response.
type StateZonePayload struct {
	ZonesCount uint8
	ZoneIndex  uint8
	Color      common.Color
}

// StateMultiZonePayload carries up to 8 zones per response.
type StateMultiZonePayload struct {
	ZonesCount uint8
	ZoneIndex  uint8
	Zones      []Zone
}

// StateExtendedColorZonesPayload carries up to 82 zones per response.
type StateExtendedColorZonesPayload struct {
	ZonesCount  uint16
	ZoneIndex   uint16
	ColorsCount uint8
	Zones       []Zone
}

// StateMultiZoneEffectPayload describes the firmware multizone effect state.
type StateMultiZoneEffectPayload struct {
	InstanceID uint32
	EffectType uint8
	Speed      uint32
	Duration   uint64
}

// TypeName returns a readable name for the effect type.
func (p *StateMultiZoneEffectPayload) TypeName() string {
	switch p.EffectType {
	case 0:
		return `OFF`
	case 1:
		return `MOVE`
	default:
		return `UNKNOWN`
	}
}

// ---------------------------------------------------------------------------
// Tile/matrix payloads

// Get64Payload selects the pixel area to query from a tile.
type Get64Payload struct {
	TileIndex uint8 `struc:"little"`
	Length    uint8 `struc:"little"`
	Reserved  uint8 `struc:"little"`
	X         uint8 `struc:"little"`
	Y         uint8 `struc:"little"`
	Width     uint8 `struc:"little"`
}

// State64Payload carries a 64-pixel frame read back from a tile.
type State64Payload struct {
	TileIndex uint8
	X         uint8
	Y         uint8
	Width     uint8
	Colors    []common.Color
}

// StateTileEffectPayload describes the firmware tile effect state.
type StateTileEffectPayload struct {
	InstanceID uint32
	EffectType TileEffect
	Speed      uint32
	Duration   uint64
}

// TypeName returns a readable name for the effect type.
func (p *StateTileEffectPayload) TypeName() string {
	switch p.EffectType {
	case TileEffectOff:
		return `OFF`
	case TileEffectMorph:
		return `MORPH`
	case TileEffectFlame:
		return `FLAME`
	case TileEffectSky:
		return `SKY`
	default:
		return `UNKNOWN`
	}
}

// Tile describes one tile in a device chain.
type Tile struct {
	Index   int
	UserX   float32
	UserY   float32
	Width   uint8
	Height  uint8
	Vendor  uint32
	Product uint32
	Version uint32
}

// StateDeviceChainPayload describes the chain of tiles attached to a device.
type StateDeviceChainPayload struct {
	StartIndex uint8
	TotalCount uint8
	Tiles      []Tile
}

// ---------------------------------------------------------------------------
// Encoders

// EncodeSetPower builds a SetPower payload.
func EncodeSetPower(level uint16) ([]byte, error) {
	return pack(&SetPowerPayload{Level: level})
}

// EncodeSetLightPower builds a SetLightPower payload with a transition
// duration in milliseconds.
func EncodeSetLightPower(level uint16, durationMs uint32) ([]byte, error) {
	return pack(&SetLightPowerPayload{Level: level, Duration: durationMs})
}

// EncodeSetLabel builds a SetLabel payload; labels longer than 32 bytes are
// truncated.
func EncodeSetLabel(label string) ([]byte, error) {
	p := &SetLabelPayload{}
	copy(p.Label[:], label)
	return pack(p)
}

// EncodeSetColor builds a SetColor payload with a transition duration in
// milliseconds.
func EncodeSetColor(color common.Color, durationMs uint32) ([]byte, error) {
	return pack(&SetColorPayload{Color: color, Duration: durationMs})
}

// EncodeSetWaveform builds a SetWaveform payload.
func EncodeSetWaveform(color common.Color, waveform Waveform, periodMs uint32, cycles float32, transient bool, skewRatio int16) ([]byte, error) {
	p := &SetWaveformPayload{
		Color:     color,
		Period:    periodMs,
		Cycles:    cycles,
		SkewRatio: skewRatio,
		Waveform:  waveform,
	}
	if transient {
		p.Transient = 1
	}
	return pack(p)
}

// EncodeGetColorZones builds a GetColorZones payload.
func EncodeGetColorZones(startIndex, endIndex uint8) ([]byte, error) {
	return pack(&GetColorZonesPayload{StartIndex: startIndex, EndIndex: endIndex})
}

// EncodeGet64 builds a Get64 payload for one full-width tile.
func EncodeGet64(tileIndex uint8) ([]byte, error) {
	return pack(&Get64Payload{TileIndex: tileIndex, Length: 1, Width: 8})
}

// EncodeSet64 builds a Set64 payload carrying a full 64-pixel frame.  Short
// color slices are padded with unlit pixels, long ones truncated.
func EncodeSet64(colors []common.Color, tileIndex uint8, durationMs uint32) []byte {
	buf := make([]byte, 10+MatrixPixels*8)
	buf[0] = tileIndex
	buf[1] = 1 // length: one tile per frame
	buf[3] = 0 // x
	buf[4] = 0 // y
	buf[5] = 8 // width
	binary.LittleEndian.PutUint32(buf[6:10], durationMs)
	for i := 0; i < MatrixPixels; i++ {
		c := common.Color{Kelvin: common.DefaultKelvin}
		if i < len(colors) {
			c = colors[i]
		}
		putColor(buf[10+i*8:], c)
	}
	return buf
}

// TileEffectParams carries the optional parameters of a SetTileEffect
// command.  The sky fields apply to the SKY effect only.
type TileEffectParams struct {
	SkyType            uint8
	CloudSaturationMin uint8
	CloudSaturationMax uint16
}

// EncodeSetTileEffect builds a SetTileEffect payload.  The payload is a
// fixed 188 bytes: two reserved bytes, instance ID, effect kind, speed in
// milliseconds, duration in nanoseconds (0 = run until told otherwise),
// eight reserved bytes, a 32-byte parameter block, and a 16-slot palette.
func EncodeSetTileEffect(effect TileEffect, instanceID uint32, speedMs uint32, durationNs uint64, params TileEffectParams, palette []common.Color) []byte {
	buf := make([]byte, 188)
	binary.LittleEndian.PutUint32(buf[2:6], instanceID)
	buf[6] = uint8(effect)
	binary.LittleEndian.PutUint32(buf[7:11], speedMs)
	binary.LittleEndian.PutUint64(buf[11:19], durationNs)
	// 19:27 reserved

	// 32-byte parameter block at 27:59
	buf[27] = params.SkyType
	buf[29] = params.CloudSaturationMin
	binary.LittleEndian.PutUint16(buf[30:32], params.CloudSaturationMax)

	count := len(palette)
	if count > PaletteSize {
		count = PaletteSize
	}
	buf[59] = uint8(count)
	for i := 0; i < count; i++ {
		putColor(buf[60+i*8:], palette[i])
	}
	return buf
}

// ---------------------------------------------------------------------------
// Decoders

// DecodeStateService parses a StateService payload.
func DecodeStateService(data []byte) (*StateServicePayload, error) {
	p := &StateServicePayload{}
	if err := unpack(data, p, 5); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStatePower parses a StatePower payload.
func DecodeStatePower(data []byte) (*StatePowerPayload, error) {
	p := &StatePowerPayload{}
	if err := unpack(data, p, 2); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStateLabel parses a StateLabel payload into the label string.
func DecodeStateLabel(data []byte) (string, error) {
	p := &StateLabelPayload{}
	if err := unpack(data, p, 32); err != nil {
		return ``, err
	}
	return stripNull(string(p.Label[:])), nil
}

// DecodeLightState parses a LightState payload.
func DecodeLightState(data []byte) (*LightStatePayload, error) {
	p := &LightStatePayload{}
	if err := unpack(data, p, 52); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStateVersion parses a StateVersion payload.
func DecodeStateVersion(data []byte) (*StateVersionPayload, error) {
	p := &StateVersionPayload{}
	if err := unpack(data, p, 12); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStateHostFirmware parses a StateHostFirmware payload.
func DecodeStateHostFirmware(data []byte) (*StateHostFirmwarePayload, error) {
	p := &StateHostFirmwarePayload{}
	if err := unpack(data, p, 20); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStateWifiInfo parses a StateWifiInfo payload.
func DecodeStateWifiInfo(data []byte) (*StateWifiInfoPayload, error) {
	p := &StateWifiInfoPayload{}
	if err := unpack(data, p, 14); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStateInfo parses a StateInfo payload.
func DecodeStateInfo(data []byte) (*StateInfoPayload, error) {
	p := &StateInfoPayload{}
	if err := unpack(data, p, 24); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStateLocation parses a StateLocation payload.
func DecodeStateLocation(data []byte) (*StateLocationPayload, error) {
	p := &StateLocationPayload{}
	if err := unpack(data, p, 56); err != nil {
		return nil, err
	}
	return p, nil
}

// LabelString returns the location label with NUL padding removed.
func (p *StateLocationPayload) LabelString() string {
	return stripNull(string(p.Label[:]))
}

// DecodeStateGroup parses a StateGroup payload.
func DecodeStateGroup(data []byte) (*StateGroupPayload, error) {
	p := &StateGroupPayload{}
	if err := unpack(data, p, 56); err != nil {
		return nil, err
	}
	return p, nil
}

// LabelString returns the group label with NUL padding removed.
func (p *StateGroupPayload) LabelString() string {
	return stripNull(string(p.Label[:]))
}

// DecodeStateInfrared parses a StateInfrared payload.
func DecodeStateInfrared(data []byte) (*StateInfraredPayload, error) {
	p := &StateInfraredPayload{}
	if err := unpack(data, p, 2); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeStateZone parses a single-zone StateZone payload.
func DecodeStateZone(data []byte) (*StateZonePayload, error) {
	if len(data) < 10 {
		return nil, common.ErrTruncatedPayload
	}
	return &StateZonePayload{
		ZonesCount: data[0],
		ZoneIndex:  data[1],
		Color:      readColor(data[2:]),
	}, nil
}

// DecodeStateMultiZone parses a StateMultiZone payload carrying 8 zones.
func DecodeStateMultiZone(data []byte) (*StateMultiZonePayload, error) {
	if len(data) < 66 {
		return nil, common.ErrTruncatedPayload
	}
	p := &StateMultiZonePayload{
		ZonesCount: data[0],
		ZoneIndex:  data[1],
	}
	for i := 0; i < 8; i++ {
		offset := 2 + i*8
		if offset+8 > len(data) {
			break
		}
		p.Zones = append(p.Zones, Zone{
			Index: int(p.ZoneIndex) + i,
			Color: readColor(data[offset:]),
		})
	}
	return p, nil
}

// DecodeStateExtendedColorZones parses a StateExtendedColorZones payload.
// The color count is read from the payload itself and bounded against both
// the protocol maximum and the bytes actually present, so a lying count is
// truncated rather than read out of bounds.
func DecodeStateExtendedColorZones(data []byte) (*StateExtendedColorZonesPayload, error) {
	if len(data) < 5 {
		return nil, common.ErrTruncatedPayload
	}
	p := &StateExtendedColorZonesPayload{
		ZonesCount:  binary.LittleEndian.Uint16(data[0:2]),
		ZoneIndex:   binary.LittleEndian.Uint16(data[2:4]),
		ColorsCount: data[4],
	}
	count := int(p.ColorsCount)
	if count > MaxExtendedZones {
		count = MaxExtendedZones
	}
	for i := 0; i < count; i++ {
		offset := 5 + i*8
		if offset+8 > len(data) {
			break
		}
		p.Zones = append(p.Zones, Zone{
			Index: int(p.ZoneIndex) + i,
			Color: readColor(data[offset:]),
		})
	}
	return p, nil
}

// DecodeStateMultiZoneEffect parses a StateMultiZoneEffect payload.
func DecodeStateMultiZoneEffect(data []byte) (*StateMultiZoneEffectPayload, error) {
	if len(data) < 59 {
		return nil, common.ErrTruncatedPayload
	}
	return &StateMultiZoneEffectPayload{
		InstanceID: binary.LittleEndian.Uint32(data[0:4]),
		EffectType: data[4],
		Speed:      binary.LittleEndian.Uint32(data[7:11]),
		Duration:   binary.LittleEndian.Uint64(data[11:19]),
	}, nil
}

// DecodeState64 parses a State64 payload carrying a 64-pixel frame.
func DecodeState64(data []byte) (*State64Payload, error) {
	if len(data) < 5+MatrixPixels*8 {
		return nil, common.ErrTruncatedPayload
	}
	p := &State64Payload{
		TileIndex: data[0],
		X:         data[2],
		Y:         data[3],
		Width:     data[4],
	}
	for i := 0; i < MatrixPixels; i++ {
		p.Colors = append(p.Colors, readColor(data[5+i*8:]))
	}
	return p, nil
}

// DecodeStateTileEffect parses a StateTileEffect payload.
func DecodeStateTileEffect(data []byte) (*StateTileEffectPayload, error) {
	if len(data) < 187 {
		return nil, common.ErrTruncatedPayload
	}
	return &StateTileEffectPayload{
		InstanceID: binary.LittleEndian.Uint32(data[2:6]),
		EffectType: TileEffect(data[6]),
		Speed:      binary.LittleEndian.Uint32(data[7:11]),
		Duration:   binary.LittleEndian.Uint64(data[11:19]),
	}, nil
}

// DecodeStateDeviceChain parses a StateDeviceChain payload.  Tiles with zero
// dimensions are unpopulated chain slots and are skipped.
func DecodeStateDeviceChain(data []byte) (*StateDeviceChainPayload, error) {
	if len(data) < 882 {
		return nil, common.ErrTruncatedPayload
	}
	p := &StateDeviceChainPayload{
		StartIndex: data[0],
		TotalCount: data[881],
	}
	for i := 0; i < 16; i++ {
		offset := 1 + i*55
		tile := data[offset : offset+55]
		width, height := tile[16], tile[17]
		if width == 0 && height == 0 {
			continue
		}
		p.Tiles = append(p.Tiles, Tile{
			Index:   i,
			UserX:   math.Float32frombits(binary.LittleEndian.Uint32(tile[8:12])),
			UserY:   math.Float32frombits(binary.LittleEndian.Uint32(tile[12:16])),
			Width:   width,
			Height:  height,
			Vendor:  binary.LittleEndian.Uint32(tile[19:23]),
			Product: binary.LittleEndian.Uint32(tile[23:27]),
			Version: binary.LittleEndian.Uint32(tile[27:31]),
		})
	}
	return p, nil
}
