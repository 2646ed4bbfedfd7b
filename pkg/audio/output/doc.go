// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Device interface and malgo, oto, PortAudio, null and WAV backends
// Package output provides callback-driven audio playback devices.
//
// A device owns its audio thread and calls DeviceConfig.Data whenever it needs
// more frames. Backends:
//   - malgo: miniaudio, the default
//   - oto: ebitengine/oto
//   - portaudio: PortAudio (build with -tags portaudio)
//   - discard: null device, real-time paced, discards audio
//   - WAV: offline renderer writing a WAV file
//
// Example:
//
//	dev, err := output.New("malgo")
//	err = dev.Init(output.DeviceConfig{
//	    SampleRate: 44100,
//	    Channels:   2,
//	    BitDepth:   16,
//	    Data:       callback,
//	    UserData:   session,
//	})
//	err = dev.Start()
//	defer dev.Uninit()
package output
