// Package config - Engine configuration, serialized as the JSON string passed to Init.
//
// See:
// https://www.doubango.org/SDKs/face-liveness/docs/Configuration_options.html
package config

import (
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds every engine setting. All keys are always serialized except the optional
// license/assets entries which are omitted when empty.
type Config struct {
	DebugLevel                  string `json:"debug_level" yaml:"debug_level" validate:"oneof=verbose info warn error fatal"`
	DebugWriteInputImageEnabled bool   `json:"debug_write_input_image_enabled" yaml:"debug_write_input_image_enabled"`
	DebugInternalDataPath       string `json:"debug_internal_data_path" yaml:"debug_internal_data_path"`

	NumThreads         int    `json:"num_threads" yaml:"num_threads" validate:"gte=-1"`
	GPGPUEnabled       bool   `json:"gpgpu_enabled" yaml:"gpgpu_enabled"`
	MaxLatency         int    `json:"max_latency" yaml:"max_latency" validate:"gte=-1"`
	ImageInterpolation string `json:"image_interpolation" yaml:"image_interpolation" validate:"oneof=nearest bilinear bicubic"`
	AsmEnabled         bool   `json:"asm_enabled" yaml:"asm_enabled"`
	IntrinEnabled      bool   `json:"intrin_enabled" yaml:"intrin_enabled"`

	OpenVINOEnabled bool   `json:"openvino_enabled" yaml:"openvino_enabled"`
	OpenVINODevice  string `json:"openvino_device" yaml:"openvino_device" validate:"oneof=CPU GPU MYRIAD HDDL FPGA AUTO"`

	DetectTFNumThreads           int       `json:"detect_tf_num_threads" yaml:"detect_tf_num_threads" validate:"gte=-1"`
	DetectTFGPUMemoryAllocMaxPct float64   `json:"detect_tf_gpu_memory_alloc_max_percent" yaml:"detect_tf_gpu_memory_alloc_max_percent" validate:"gte=0,lte=1"`
	DetectROI                    []float64 `json:"detect_roi" yaml:"detect_roi" validate:"len=4"`
	DetectMinScore               float64   `json:"detect_minscore" yaml:"detect_minscore" validate:"gte=0,lte=1"`
	DetectFaceMinSize            int       `json:"detect_face_minsize" yaml:"detect_face_minsize" validate:"gte=0"`

	LivenessDetectEnabled          bool    `json:"liveness_detect_enabled" yaml:"liveness_detect_enabled"`
	LivenessTFNumThreads           int     `json:"liveness_tf_num_threads" yaml:"liveness_tf_num_threads" validate:"gte=-1"`
	LivenessTFGPUMemoryAllocMaxPct float64 `json:"liveness_tf_gpu_memory_alloc_max_percent" yaml:"liveness_tf_gpu_memory_alloc_max_percent" validate:"gte=0,lte=1"`
	LivenessFaceMinSize            int     `json:"liveness_face_minsize" yaml:"liveness_face_minsize" validate:"gte=0"`
	LivenessGenuineMinScore        float64 `json:"liveness_genuine_minscore" yaml:"liveness_genuine_minscore" validate:"gte=0,lte=1"`
	LivenessDisputedMinScore       float64 `json:"liveness_disputed_minscore" yaml:"liveness_disputed_minscore" validate:"gte=0,lte=1"`
	LivenessTooFarThreshold        float64 `json:"liveness_toofar_threshold" yaml:"liveness_toofar_threshold" validate:"gte=0,lte=1"`

	DeepfakeDetectEnabled          bool    `json:"deepfake_detect_enabled" yaml:"deepfake_detect_enabled"`
	DeepfakeTFNumThreads           int     `json:"deepfake_tf_num_threads" yaml:"deepfake_tf_num_threads" validate:"gte=-1"`
	DeepfakeTFGPUMemoryAllocMaxPct float64 `json:"deepfake_tf_gpu_memory_alloc_max_percent" yaml:"deepfake_tf_gpu_memory_alloc_max_percent" validate:"gte=0,lte=1"`
	DeepfakeMinScore               float64 `json:"deepfake_minscore" yaml:"deepfake_minscore" validate:"gte=0,lte=1"`

	DisguiseDetectEnabled          bool    `json:"disguise_detect_enabled" yaml:"disguise_detect_enabled"`
	DisguiseTFNumThreads           int     `json:"disguise_tf_num_threads" yaml:"disguise_tf_num_threads" validate:"gte=-1"`
	DisguiseTFGPUMemoryAllocMaxPct float64 `json:"disguise_tf_gpu_memory_alloc_max_percent" yaml:"disguise_tf_gpu_memory_alloc_max_percent" validate:"gte=0,lte=1"`
	DisguiseMinScore               float64 `json:"disguise_minscore" yaml:"disguise_minscore" validate:"gte=0,lte=1"`

	AssetsFolder     string `json:"assets_folder,omitempty" yaml:"assets_folder"`
	LicenseTokenFile string `json:"license_token_file,omitempty" yaml:"license_token_file"`
	LicenseTokenData string `json:"license_token_data,omitempty" yaml:"license_token_data"`
}

// Default returns the engine configuration used by the liveness and benchmark commands.
func Default() Config {
	return Config{
		DebugLevel:                  "info",
		DebugWriteInputImageEnabled: false,
		DebugInternalDataPath:       ".",

		NumThreads:         -1,
		GPGPUEnabled:       true,
		MaxLatency:         -1,
		ImageInterpolation: "bicubic",
		AsmEnabled:         true,
		IntrinEnabled:      true,

		OpenVINOEnabled: false,
		OpenVINODevice:  "CPU",

		DetectTFNumThreads:           -1,
		DetectTFGPUMemoryAllocMaxPct: 0.2,
		DetectROI:                    []float64{0, 0, 0, 0},
		DetectMinScore:               0.9,
		DetectFaceMinSize:            128,

		LivenessDetectEnabled:          true,
		LivenessTFNumThreads:           -1,
		LivenessTFGPUMemoryAllocMaxPct: 0.2,
		LivenessFaceMinSize:            128,
		LivenessGenuineMinScore:        0.98,
		LivenessDisputedMinScore:       0.5,
		LivenessTooFarThreshold:        0.5,

		DeepfakeDetectEnabled:          true,
		DeepfakeTFNumThreads:           -1,
		DeepfakeTFGPUMemoryAllocMaxPct: 0.2,
		DeepfakeMinScore:               0.5,

		DisguiseDetectEnabled:          true,
		DisguiseTFNumThreads:           -1,
		DisguiseTFGPUMemoryAllocMaxPct: 0.2,
		DisguiseMinScore:               0.5,
	}
}

// DeepfakeDefault returns the configuration tuned for deepfake detection on video frames:
// smaller faces are accepted and only the deepfake detector runs.
func DeepfakeDefault() Config {
	c := Default()
	c.DetectFaceMinSize = 64
	c.LivenessFaceMinSize = 64
	c.LivenessDetectEnabled = false
	c.DisguiseDetectEnabled = false
	c.DeepfakeDetectEnabled = true
	return c
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
//
// Returns:
//   - error: A description of every invalid field, nil if the configuration is valid.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid engine configuration")
	}
	return nil
}

// JSON serializes the configuration into the string expected by the engine Init call.
//
// Returns:
//   - string: The JSON configuration.
//   - error: An error if the configuration is invalid.
func (c Config) JSON() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal engine configuration")
	}
	return string(b), nil
}

// RuntimeKeyConfig is the minimal configuration needed to request a runtime license key.
type RuntimeKeyConfig struct {
	AssetsFolder string `json:"assets_folder,omitempty"`
	HostType     string `json:"host_type,omitempty" validate:"omitempty,oneof=aws-instance aws-byol azure-instance azure-byol"`
}

// JSON validates and serializes the runtime key configuration.
func (c RuntimeKeyConfig) JSON() (string, error) {
	if err := validate.Struct(c); err != nil {
		return "", errors.Wrap(err, "invalid runtime key configuration")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal runtime key configuration")
	}
	return string(b), nil
}
