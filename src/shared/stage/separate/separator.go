package separate

import "context"

type Stem string

const (
	Drums  Stem = "drums"
	Bass   Stem = "bass"
	Other  Stem = "other"
	Vocals Stem = "vocals"
)

// StemOrder is the fixed order separators return stems in
var StemOrder = [4]Stem{Drums, Bass, Other, Vocals}

const VocalsIndex = 3

// Stems holds one wav path per stem, indexed like StemOrder
type Stems [4]string

func (s Stems) Vocals() string {
	return s[VocalsIndex]
}

// Separator splits a stereo wav into its four stems, writing them under
// outputDir
//
//counterfeiter:generate . Separator
type Separator interface {
	Separate(ctx context.Context, stereoWavPath string, outputDir string) (Stems, error)
}
