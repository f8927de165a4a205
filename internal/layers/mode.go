package layers

// Mode selects training or inference behavior for batch normalization and dropout.
type Mode int

// Run modes.
const (
	// ModeTrain uses batch statistics, updates running statistics and samples dropout masks.
	ModeTrain Mode = iota
	// ModeTest uses stored running statistics and makes dropout the identity.
	ModeTest
)

// String returns "train" or "test".
func (m Mode) String() string {
	switch m {
	case ModeTrain:
		return "train"
	case ModeTest:
		return "test"
	default:
		return "unknown"
	}
}
