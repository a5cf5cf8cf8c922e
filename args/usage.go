package args

import (
	"fmt"
	"strings"
)

// Option describes one key for the usage text.
type Option struct {
	Key         string
	Value       string
	Description string
	Optional    bool
}

// Common options shared by the commands.
var (
	OptImage = Option{
		Key:         KeyImage,
		Value:       "path-to-image-with-a-face-to-analyse",
		Description: "Path to an image (JPEG/PNG/BMP/GIF/WebP) with a face. This image will be used to evaluate the liveness detector.",
	}
	OptAssets = Option{
		Key:         KeyAssets,
		Value:       "path-to-assets-folder",
		Description: "Path to the assets folder containing the configuration files and models.",
		Optional:    true,
	}
	OptTokenFile = Option{
		Key:         KeyTokenFile,
		Value:       "path-to-license-token-file",
		Description: "Path to the file containing the base64 license token. Without a token the engine runs as a trial version. Default: null.",
		Optional:    true,
	}
	OptTokenData = Option{
		Key:         KeyTokenData,
		Value:       "base64-license-token-data",
		Description: "Base64 license token. Without a token the engine runs as a trial version. Default: null.",
		Optional:    true,
	}
	OptParallel = Option{
		Key:         KeyParallel,
		Value:       "whether-to-enable-parallel-mode:true/false",
		Description: "Whether to deliver results asynchronously. Default: false.",
		Optional:    true,
	}
	OptConfig = Option{
		Key:         KeyConfig,
		Value:       "path-to-yaml-config",
		Description: "YAML file overriding the default engine configuration.",
		Optional:    true,
	}
	OptLogLevel = Option{
		Key:         KeyLogLevel,
		Value:       "debug|info|warn|error",
		Description: "Log level of this program. Default: info.",
		Optional:    true,
	}
)

// Usage renders the help block of a command.
//
// Arguments:
//   - name: The command name.
//   - opts: The options accepted by the command.
//
// Returns:
//   - string: The help text.
func Usage(name string, opts []Option) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(strings.Repeat("*", 80))
	b.WriteString("\n")
	b.WriteString(name)
	b.WriteString("\n")
	for _, o := range opts {
		if o.Optional {
			fmt.Fprintf(&b, "\t[%s <%s>]\n", o.Key, o.Value)
		} else {
			fmt.Fprintf(&b, "\t%s <%s>\n", o.Key, o.Value)
		}
	}
	b.WriteString("\nOptions surrounded with [] are optional.\n\n")
	for _, o := range opts {
		fmt.Fprintf(&b, "%s: %s\n\n", o.Key, o.Description)
	}
	b.WriteString(strings.Repeat("*", 80))
	b.WriteString("\n")
	return b.String()
}

// Options specific to a single command.
var (
	OptAssetsRequired = Option{
		Key:         KeyAssets,
		Value:       "path-to-assets-folder",
		Description: "Path to the assets folder containing the configuration files and models.",
	}
	OptLoops = Option{
		Key:         KeyLoops,
		Value:       "number-of-loops",
		Description: "Number of times to run the processing function. Default: 100.",
		Optional:    true,
	}
	OptParallelOn = Option{
		Key:         KeyParallel,
		Value:       "whether-to-enable-parallel-mode:true/false",
		Description: "Whether to deliver results asynchronously. Default: true.",
		Optional:    true,
	}
	OptJSON = Option{
		Key:         KeyJSON,
		Value:       "json-output:bool",
		Description: "Whether to output the runtime license key as JSON string instead of raw string. Default: true.",
		Optional:    true,
	}
	OptHostType = Option{
		Key:         KeyType,
		Value:       "host-type",
		Description: "Defines how the license is attached to the machine/host. Possible values are 'aws-instance', 'aws-byol', 'azure-instance' or 'azure-byol'. Default: null.",
		Optional:    true,
	}
	OptVideo = Option{
		Key:         KeyVideo,
		Value:       "path-to-video-to-process",
		Description: "Path to the video to process.",
	}
	OptOutput = Option{
		Key:         KeyOutput,
		Value:       "path-to-output-video",
		Description: "Path to the annotated video. Default: ./output.mp4.",
		Optional:    true,
	}
	OptWindow = Option{
		Key:         KeyWindow,
		Value:       "whether-to-show-frames:true/false",
		Description: "Whether to display every annotated frame in a window. Press 'q' to stop. Default: false.",
		Optional:    true,
	}
)
