package constant

import "strings"

const (
	RelayModeUnknown = iota
	RelayModeGenerateImage
	RelayModeRemoveText
	RelayModeReplaceBackground
	RelayModeUpscaleImage
)

// RelayModes lists every served operation in route order.
var RelayModes = []int{
	RelayModeGenerateImage,
	RelayModeRemoveText,
	RelayModeReplaceBackground,
	RelayModeUpscaleImage,
}

var relayModeNames = map[int]string{
	RelayModeGenerateImage:     "generate-image",
	RelayModeRemoveText:        "remove-text",
	RelayModeReplaceBackground: "replace-background",
	RelayModeUpscaleImage:      "upscale-image",
}

func Path2RelayMode(path string) int {
	path = strings.TrimSuffix(path, "/")
	for mode, name := range relayModeNames {
		if strings.HasSuffix(path, "/"+name) {
			return mode
		}
	}
	return RelayModeUnknown
}

// RelayModeName is the route segment of a mode, also used as the
// operation label in logs and metrics.
func RelayModeName(mode int) string {
	if name, ok := relayModeNames[mode]; ok {
		return name
	}
	return "unknown"
}

// RequiresImage reports whether the mode operates on an uploaded image.
func RequiresImage(mode int) bool {
	return mode == RelayModeRemoveText || mode == RelayModeReplaceBackground || mode == RelayModeUpscaleImage
}
