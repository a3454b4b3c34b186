package config

import "github.com/spf13/viper"

// setDefaultConfig registers viper defaults for every setting, so a process
// with no config.yaml on disk still starts with sane values.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "studio-engine")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/engine.log")
	viper.SetDefault("main.log.rotation", "daily")
	viper.SetDefault("main.log.maxsize", 100*1024*1024)

	viper.SetDefault("device.backend", "auto")
	viper.SetDefault("device.preferredinput", "")
	viper.SetDefault("device.preferredoutput", "")
	viper.SetDefault("device.samplerate", 44100)
	viper.SetDefault("device.channels", 2)

	viper.SetDefault("recording.prerecordseconds", 10)
	viper.SetDefault("recording.outputdir", "recordings")
	viper.SetDefault("recording.splittracks", true)
	viper.SetDefault("recording.segmentmaxbytes", 3_900_000_000)
	viper.SetDefault("recording.headerpatchevery", "2s")
	viper.SetDefault("recording.writer.minsleep", "5ms")
	viper.SetDefault("recording.writer.maxsleep", "50ms")

	viper.SetDefault("cleaning.highpassenabled", true)
	viper.SetDefault("cleaning.highpasshz", 80.0)
	viper.SetDefault("cleaning.lowpassenabled", true)
	viper.SetDefault("cleaning.lowpasshz", 8000.0)
	viper.SetDefault("cleaning.notchenabled", true)
	viper.SetDefault("cleaning.mainshz", "auto")
	viper.SetDefault("cleaning.notchharmonic", 4)
	viper.SetDefault("cleaning.spectralenabled", true)
	viper.SetDefault("cleaning.spectralreducedb", 12.0)
	viper.SetDefault("cleaning.neuralenabled", true)
	viper.SetDefault("cleaning.neuralstrength", 0.8)
	viper.SetDefault("cleaning.expanderenabled", true)
	viper.SetDefault("cleaning.expanderthreshold", -40.0)
	viper.SetDefault("cleaning.expanderratio", 2.0)

	viper.SetDefault("playback.decodecachedir", "cache/decoded")
	viper.SetDefault("playback.maxcachedpcm", 16)

	viper.SetDefault("recovery.scanonstartup", true)
	viper.SetDefault("recovery.scratchbytes", 4*1024*1024)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "127.0.0.1:9123")
}
