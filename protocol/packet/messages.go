package packet

// Message identifies a protocol message type.
type Message uint16

const (
	// Discovery
	GetService   Message = 2
	StateService Message = 3

	// Device
	GetHostInfo       Message = 12
	StateHostInfo     Message = 13
	GetHostFirmware   Message = 14
	StateHostFirmware Message = 15
	GetWifiInfo       Message = 16
	StateWifiInfo     Message = 17
	GetWifiFirmware   Message = 18
	StateWifiFirmware Message = 19
	GetPower          Message = 20
	SetPower          Message = 21
	StatePower        Message = 22
	GetLabel          Message = 23
	SetLabel          Message = 24
	StateLabel        Message = 25
	GetVersion        Message = 32
	StateVersion      Message = 33
	GetInfo           Message = 34
	StateInfo         Message = 35
	Acknowledgement   Message = 45
	GetLocation       Message = 48
	StateLocation     Message = 50
	GetGroup          Message = 51
	StateGroup        Message = 53
	EchoRequest       Message = 58
	EchoResponse      Message = 59

	// Light
	GetColor            Message = 101
	SetColor            Message = 102
	SetWaveform         Message = 103
	LightState          Message = 107
	GetLightPower       Message = 116
	SetLightPower       Message = 117
	StateLightPower     Message = 118
	SetWaveformOptional Message = 119
	GetInfrared         Message = 120
	StateInfrared       Message = 121

	// MultiZone
	GetColorZones           Message = 502
	StateZone               Message = 503
	StateMultiZone          Message = 506
	GetMultiZoneEffect      Message = 507
	StateMultiZoneEffect    Message = 509
	GetExtendedColorZones   Message = 511
	StateExtendedColorZones Message = 512

	// Tile/Matrix
	GetDeviceChain   Message = 701
	StateDeviceChain Message = 702
	Get64            Message = 707
	State64          Message = 711
	Set64            Message = 715
	GetTileEffect    Message = 718
	SetTileEffect    Message = 719
	StateTileEffect  Message = 720
)

// Service identifies the service advertised in a StateService payload.
type Service uint8

// ServiceUDP is the only service this implementation speaks; devices also
// advertise reserved service values that must be ignored.
const ServiceUDP Service = 1

// Waveform identifies a firmware waveform shape for SetWaveform.
type Waveform uint8

const (
	WaveformSaw      Waveform = 0
	WaveformSine     Waveform = 1
	WaveformHalfSine Waveform = 2
	WaveformTriangle Waveform = 3
	WaveformPulse    Waveform = 4
)

// TileEffect identifies a firmware tile effect kind.
type TileEffect uint8

const (
	TileEffectOff   TileEffect = 0
	TileEffectMorph TileEffect = 2
	TileEffectFlame TileEffect = 3
	TileEffectSky   TileEffect = 5
)
