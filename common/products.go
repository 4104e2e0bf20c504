package common

// Features describes the capabilities of a product.
type Features struct {
	Color             bool
	Chain             bool
	Matrix            bool
	Infrared          bool
	Multizone         bool
	ExtendedMultizone bool
	HEV               bool
	Buttons           bool
	Relays            bool
	TemperatureRange  [2]uint16 // min/max kelvin, zero when not applicable
}

// Product identifies a vendor product and its feature set.
type Product struct {
	Name     string
	Features Features
}

// VendorLifx is the vendor ID for genuine devices.
const VendorLifx = 1

// Products maps product IDs to their names and capabilities, following the
// vendor's published product registry.
var Products = map[uint32]Product{
	1:   {Name: "LIFX Original 1000", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	3:   {Name: "LIFX Color 650", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	10:  {Name: "LIFX White 800 (Low Voltage)", Features: Features{TemperatureRange: [2]uint16{2700, 6500}}},
	11:  {Name: "LIFX White 800 (High Voltage)", Features: Features{TemperatureRange: [2]uint16{2700, 6500}}},
	15:  {Name: "LIFX Color 1000", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	18:  {Name: "LIFX White 900 BR30 (Low Voltage)", Features: Features{TemperatureRange: [2]uint16{2500, 9000}}},
	19:  {Name: "LIFX White 900 BR30 (High Voltage)", Features: Features{TemperatureRange: [2]uint16{2500, 9000}}},
	20:  {Name: "LIFX Color 1000 BR30", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	22:  {Name: "LIFX Color 1000", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	27:  {Name: "LIFX A19", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	28:  {Name: "LIFX BR30", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	29:  {Name: "LIFX A19 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	30:  {Name: "LIFX BR30 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	31:  {Name: "LIFX Z", Features: Features{Color: true, Multizone: true, TemperatureRange: [2]uint16{2500, 9000}}},
	32:  {Name: "LIFX Z", Features: Features{Color: true, Multizone: true, TemperatureRange: [2]uint16{2500, 9000}}},
	36:  {Name: "LIFX Downlight", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	37:  {Name: "LIFX Downlight", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	38:  {Name: "LIFX Beam", Features: Features{Color: true, Multizone: true, TemperatureRange: [2]uint16{2500, 9000}}},
	39:  {Name: "LIFX Downlight White to Warm", Features: Features{TemperatureRange: [2]uint16{2500, 9000}}},
	40:  {Name: "LIFX Downlight", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	43:  {Name: "LIFX A19", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	44:  {Name: "LIFX BR30", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	45:  {Name: "LIFX A19 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	46:  {Name: "LIFX BR30 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	49:  {Name: "LIFX Mini Color", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	50:  {Name: "LIFX Mini White to Warm", Features: Features{TemperatureRange: [2]uint16{1500, 9000}}},
	51:  {Name: "LIFX Mini White", Features: Features{TemperatureRange: [2]uint16{2700, 2700}}},
	52:  {Name: "LIFX GU10", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	53:  {Name: "LIFX GU10", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	55:  {Name: "LIFX Tile", Features: Features{Color: true, Chain: true, Matrix: true, TemperatureRange: [2]uint16{2500, 9000}}},
	57:  {Name: "LIFX Candle", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{2500, 9000}}},
	59:  {Name: "LIFX Mini Color", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	60:  {Name: "LIFX Mini White to Warm", Features: Features{TemperatureRange: [2]uint16{1500, 9000}}},
	61:  {Name: "LIFX Mini White", Features: Features{TemperatureRange: [2]uint16{2700, 2700}}},
	62:  {Name: "LIFX A19", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	63:  {Name: "LIFX BR30", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	64:  {Name: "LIFX A19 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	65:  {Name: "LIFX BR30 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	66:  {Name: "LIFX Mini White", Features: Features{TemperatureRange: [2]uint16{2700, 2700}}},
	68:  {Name: "LIFX Candle", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{2500, 9000}}},
	70:  {Name: "LIFX Switch", Features: Features{Buttons: true, Relays: true}},
	71:  {Name: "LIFX Switch", Features: Features{Buttons: true, Relays: true}},
	81:  {Name: "LIFX Candle White to Warm", Features: Features{TemperatureRange: [2]uint16{2500, 6500}}},
	82:  {Name: "LIFX Filament Clear", Features: Features{TemperatureRange: [2]uint16{2100, 2100}}},
	85:  {Name: "LIFX Filament Amber", Features: Features{TemperatureRange: [2]uint16{2000, 2000}}},
	87:  {Name: "LIFX Mini White", Features: Features{TemperatureRange: [2]uint16{2700, 2700}}},
	88:  {Name: "LIFX Mini White", Features: Features{TemperatureRange: [2]uint16{2700, 2700}}},
	89:  {Name: "LIFX Switch", Features: Features{Buttons: true, Relays: true}},
	90:  {Name: "LIFX Clean", Features: Features{Color: true, HEV: true, TemperatureRange: [2]uint16{2500, 9000}}},
	91:  {Name: "LIFX Color", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	92:  {Name: "LIFX Color", Features: Features{Color: true, TemperatureRange: [2]uint16{2500, 9000}}},
	93:  {Name: "LIFX A19 Night Vision Intl", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	94:  {Name: "LIFX BR30 Night Vision Intl", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	96:  {Name: "LIFX A19 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	97:  {Name: "LIFX BR30 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	98:  {Name: "LIFX Mini White to Warm", Features: Features{TemperatureRange: [2]uint16{1500, 9000}}},
	99:  {Name: "LIFX Mini White to Warm", Features: Features{TemperatureRange: [2]uint16{1500, 9000}}},
	100: {Name: "LIFX Candle Color", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	101: {Name: "LIFX A19 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	102: {Name: "LIFX BR30 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	109: {Name: "LIFX A19 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	110: {Name: "LIFX BR30 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	111: {Name: "LIFX A19 Night Vision", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	112: {Name: "LIFX BR30 Night Vision Intl", Features: Features{Color: true, Infrared: true, TemperatureRange: [2]uint16{2500, 9000}}},
	113: {Name: "LIFX Mini White to Warm", Features: Features{TemperatureRange: [2]uint16{1500, 9000}}},
	114: {Name: "LIFX Mini White to Warm", Features: Features{TemperatureRange: [2]uint16{1500, 9000}}},
	115: {Name: "LIFX String", Features: Features{Color: true, Multizone: true, ExtendedMultizone: true, TemperatureRange: [2]uint16{1500, 9000}}},
	116: {Name: "LIFX String", Features: Features{Color: true, Multizone: true, ExtendedMultizone: true, TemperatureRange: [2]uint16{1500, 9000}}},
	117: {Name: "LIFX String", Features: Features{Color: true, Multizone: true, ExtendedMultizone: true, TemperatureRange: [2]uint16{1500, 9000}}},
	118: {Name: "LIFX String", Features: Features{Color: true, Multizone: true, ExtendedMultizone: true, TemperatureRange: [2]uint16{1500, 9000}}},
	119: {Name: "LIFX Neon", Features: Features{Color: true, Multizone: true, ExtendedMultizone: true, TemperatureRange: [2]uint16{1500, 9000}}},
	120: {Name: "LIFX Neon", Features: Features{Color: true, Multizone: true, ExtendedMultizone: true, TemperatureRange: [2]uint16{1500, 9000}}},
	137: {Name: "LIFX Candle Color US", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	138: {Name: "LIFX Candle Colour Intl", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	171: {Name: "LIFX Round Spot US", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	173: {Name: "LIFX Round Path US", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	174: {Name: "LIFX Square Path US", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	176: {Name: "LIFX Ceiling US", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	177: {Name: "LIFX Ceiling Intl", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	201: {Name: "LIFX Ceiling 13x26\" US", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	202: {Name: "LIFX Ceiling 13x26\" Intl", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	217: {Name: "LIFX Tube US", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	218: {Name: "LIFX Tube Intl", Features: Features{Color: true, Matrix: true, TemperatureRange: [2]uint16{1500, 9000}}},
	219: {Name: "LIFX Luna US", Features: Features{Color: true, Matrix: true, Buttons: true, TemperatureRange: [2]uint16{1500, 9000}}},
	220: {Name: "LIFX Luna Intl", Features: Features{Color: true, Matrix: true, Buttons: true, TemperatureRange: [2]uint16{1500, 9000}}},
}

// matrixSizes lists the pixel grid dimensions of matrix-capable products.
// Products with matrix support not listed here default to 8x8.
var matrixSizes = map[uint32][2]int{
	55:  {8, 8},
	57:  {8, 1},
	68:  {8, 1},
	100: {8, 1},
	137: {8, 1},
	138: {8, 1},
}

// MatrixSize returns the pixel grid dimensions for a matrix-capable product,
// or ok=false if the product does not expose an addressable pixel grid.
func MatrixSize(productID uint32) (width, height int, ok bool) {
	p, found := Products[productID]
	if !found || !p.Features.Matrix {
		return 0, 0, false
	}
	if size, found := matrixSizes[productID]; found {
		return size[0], size[1], true
	}
	return 8, 8, true
}
