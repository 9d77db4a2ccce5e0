package configs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "CLIPKIT"
	configName = "clipkit"

	DefaultInputDir = "downloads"
	DefaultLogFile  = "clipkit.log"
)

// SetDefaults 注册所有配置项的默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("frame.width", 720)
	v.SetDefault("frame.height", 1280)
	v.SetDefault("frame.fps", 30)

	v.SetDefault("transition.duration", 0.5)
	v.SetDefault("final.duration", 2.0)

	v.SetDefault("sound.dir", ".")
	v.SetDefault("sound.tick", "ding.wav")
	v.SetDefault("sound.tick_max", 0.5)
	v.SetDefault("sound.end", "end.wav")
	v.SetDefault("sound.end_max", 1.0)

	v.SetDefault("encode.video_codec", "libx264")
	v.SetDefault("encode.audio_codec", "aac")
	v.SetDefault("encode.preset", "medium")
	v.SetDefault("encode.video_bitrate", "4000k")
	v.SetDefault("encode.audio_bitrate", "192k")
	v.SetDefault("encode.sample_rate", 44100)

	v.SetDefault("ffmpeg.bin", "ffmpeg")
	v.SetDefault("ffmpeg.join_timeout", "10m")
	v.SetDefault("font.paths", []string{})

	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("log.level", "info")

	v.SetDefault("download.site", "https://snapinsta.to/")
	v.SetDefault("download.dir", DefaultInputDir)
	v.SetDefault("download.headless", string(HeadlessNew))
	v.SetDefault("download.bin", "")
	v.SetDefault("download.proxy", "")
}

// NewViper 创建 viper 实例：默认值 -> 配置文件 -> CLIPKIT_ 环境变量。
// configFile 为空时在当前目录和 $HOME/.config/clipkit 下查找 clipkit.yaml，找不到不报错。
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "读取配置文件失败")
		}
	}

	return v, nil
}

// LoadMerge 从 viper 读取合并配置
func LoadMerge(v *viper.Viper) Merge {
	return Merge{
		Frame: Frame{
			Width:  v.GetInt("frame.width"),
			Height: v.GetInt("frame.height"),
			FPS:    v.GetInt("frame.fps"),
		},
		Encode: Encode{
			VideoCodec:   v.GetString("encode.video_codec"),
			AudioCodec:   v.GetString("encode.audio_codec"),
			Preset:       v.GetString("encode.preset"),
			VideoBitrate: v.GetString("encode.video_bitrate"),
			AudioBitrate: v.GetString("encode.audio_bitrate"),
			SampleRate:   v.GetInt("encode.sample_rate"),
		},
		Sound: Sound{
			Dir:     v.GetString("sound.dir"),
			Tick:    v.GetString("sound.tick"),
			TickMax: v.GetFloat64("sound.tick_max"),
			End:     v.GetString("sound.end"),
			EndMax:  v.GetFloat64("sound.end_max"),
		},
		TransitionDuration: v.GetFloat64("transition.duration"),
		FinalDuration:      v.GetFloat64("final.duration"),
		FFmpegBin:          v.GetString("ffmpeg.bin"),
		JoinTimeout:        v.GetDuration("ffmpeg.join_timeout"),
		FontPaths:          v.GetStringSlice("font.paths"),
	}
}

// LoadDownload 从 viper 读取下载配置
func LoadDownload(v *viper.Viper) Download {
	return Download{
		Site:     v.GetString("download.site"),
		Dir:      v.GetString("download.dir"),
		Headless: ParseHeadlessMode(v.GetString("download.headless")),
		BinPath:  v.GetString("download.bin"),
		Proxy:    v.GetString("download.proxy"),
	}
}
