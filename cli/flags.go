package cli

var (
	verbose    bool
	configPath string

	// overrides for the [surface] section
	surfaceType string
	surfaceFile string

	// for screenshot image command
	screenshotOutputPath string
	screenshotFormat     string
	screenshotQuality    int

	// for media list command
	mediaLimit int
	mediaIndex bool
	mediaJSON  bool
)
