package options

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ModeWindow = "window"
	ModeRecord = "record"
)

type Options struct {
	Mode       *string
	Width      *int
	Height     *int
	Title      *string
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	Translate  *bool // compile the portable sources through the shader translator
	LogLevel   *string
	ConfigFile *string
	Help       *bool
}

// File is the on-disk form of Options. Unset keys leave the flag value alone.
type File struct {
	Mode       *string  `yaml:"mode"`
	Width      *int     `yaml:"width"`
	Height     *int     `yaml:"height"`
	Title      *string  `yaml:"title"`
	Duration   *float64 `yaml:"duration"`
	FPS        *int     `yaml:"fps"`
	OutputFile *string  `yaml:"output"`
	FFMPEGPath *string  `yaml:"ffmpeg"`
	Codec      *string  `yaml:"codec"`
	Translate  *bool    `yaml:"translate"`
	LogLevel   *string  `yaml:"loglevel"`
}

// Register defines every option on fs and returns the Options bound to them.
func Register(fs *flag.FlagSet) *Options {
	return &Options{
		Mode:       fs.String("mode", ModeWindow, "Run mode: window or record"),
		Width:      fs.Int("width", 1024, "Width of the window or recording"),
		Height:     fs.Int("height", 1024, "Height of the window or recording"),
		Title:      fs.String("title", "Running OpenGL on Mac", "Window title"),
		Duration:   fs.Float64("duration", 5.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile: fs.String("output", "triangle.mp4", "Output file name for recording"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec for recording: h264 or hevc"),
		Translate:  fs.Bool("translate", false, "Translate the portable shader sources before compiling"),
		LogLevel:   fs.String("loglevel", "info", "Log level: debug, info, warn or error"),
		ConfigFile: fs.String("config", "", "Optional YAML file with option defaults"),
		Help:       fs.Bool("help", false, "Show help message"),
	}
}

// Parse parses args into a new Options, applying ConfigFile underneath any
// flags given explicitly on the command line.
func Parse(fs *flag.FlagSet, args []string) (*Options, error) {
	o := Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *o.ConfigFile == "" {
		return o, nil
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	f, err := LoadFile(*o.ConfigFile)
	if err != nil {
		return nil, err
	}
	o.apply(f, set)
	return o, nil
}

// LoadFile reads a YAML options file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &f, nil
}

func (o *Options) apply(f *File, set map[string]bool) {
	setString(o.Mode, f.Mode, set["mode"])
	setInt(o.Width, f.Width, set["width"])
	setInt(o.Height, f.Height, set["height"])
	setString(o.Title, f.Title, set["title"])
	if f.Duration != nil && !set["duration"] {
		*o.Duration = *f.Duration
	}
	setInt(o.FPS, f.FPS, set["fps"])
	setString(o.OutputFile, f.OutputFile, set["output"])
	setString(o.FFMPEGPath, f.FFMPEGPath, set["ffmpeg"])
	setString(o.Codec, f.Codec, set["codec"])
	if f.Translate != nil && !set["translate"] {
		*o.Translate = *f.Translate
	}
	setString(o.LogLevel, f.LogLevel, set["loglevel"])
}

func setString(dst, src *string, explicit bool) {
	if src != nil && !explicit {
		*dst = *src
	}
}

func setInt(dst, src *int, explicit bool) {
	if src != nil && !explicit {
		*dst = *src
	}
}

// Validate reports the first option that cannot be used.
func (o *Options) Validate() error {
	switch *o.Mode {
	case ModeWindow, ModeRecord:
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	if *o.Mode == ModeRecord {
		if *o.FPS <= 0 {
			return fmt.Errorf("invalid fps %d", *o.FPS)
		}
		if *o.Duration <= 0 {
			return fmt.Errorf("invalid duration %g", *o.Duration)
		}
		if o.TotalFrames() < 1 {
			return fmt.Errorf("duration %gs at %d fps records no frames", *o.Duration, *o.FPS)
		}
		if *o.OutputFile == "" {
			return fmt.Errorf("record mode needs an output file")
		}
		switch *o.Codec {
		case "h264", "hevc":
		default:
			return fmt.Errorf("unknown codec %q", *o.Codec)
		}
	}
	return nil
}

// TotalFrames is the number of frames a recording renders.
func (o *Options) TotalFrames() int {
	return int(*o.Duration * float64(*o.FPS))
}
