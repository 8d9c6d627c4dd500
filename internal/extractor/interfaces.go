package extractor

// OrientationReader is the interface for reading the stored orientation of an image.
type OrientationReader interface {
	ReadOrientation(filePath string) (Orientation, error)
	SupportsFile(filePath string) bool
}

// Orientation is the EXIF Orientation tag value (1..8).
type Orientation int

const (
	OrientationUnknown Orientation = iota
	OrientationNormal
	OrientationFlipH
	OrientationRotate180
	OrientationFlipV
	OrientationTranspose
	OrientationRotate270
	OrientationTransverse
	OrientationRotate90
)

// String returns a human-readable description of the orientation.
func (o Orientation) String() string {
	switch o {
	case OrientationNormal:
		return "Normal"
	case OrientationFlipH:
		return "Flip Horizontal"
	case OrientationRotate180:
		return "Rotate 180"
	case OrientationFlipV:
		return "Flip Vertical"
	case OrientationTranspose:
		return "Transpose"
	case OrientationRotate270:
		return "Rotate 270"
	case OrientationTransverse:
		return "Transverse"
	case OrientationRotate90:
		return "Rotate 90"
	default:
		return "Unknown"
	}
}

// NeedsTransform reports whether pixels must be transformed to display upright.
func (o Orientation) NeedsTransform() bool {
	return o > OrientationNormal && o <= OrientationRotate90
}
