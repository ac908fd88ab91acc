// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Both directions are built on github.com/go-audio/wav.
//
// # Supported Formats
//
// Decoding:
//   - PCM 8, 16, 24 and 32-bit (8-bit is re-centered to signed)
//   - IEEE float 32-bit, delivered as float frames
//   - WAVE_FORMAT_EXTENSIBLE carrying PCM
//   - Any channel count and sample rate
//
// Encoding writes integer PCM at 16, 24 or 32 bits.
//
// # Decoding WAV Files
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	for {
//	    frame, err := source.ReadFrame()
//	    if err == io.EOF {
//	        break
//	    }
//	    // frame.Ints holds interleaved samples at the file's bit depth
//	}
//
// Frames hold up to FrameLen samples per channel. TotalSamples in the
// descriptor is taken from the data chunk size.
//
// # Writing WAV Files
//
//	enc, err := wav.NewEncoder("out.wav", desc)
//	enc.WriteHeader()
//	enc.Encode(frame)
//	enc.WriteTrailer() // patches the RIFF and data sizes
//	enc.Close()
//
// # Error Handling
//
//   - ErrNotWavFile: the input lacks a RIFF/WAVE header
//   - ErrUnsupportedWavLayout: compressed format tags such as ADPCM
//   - ErrUnsupportedBitDepth: widths other than those listed above
//   - ErrUnsupportedWavChunks: no data chunk
package wav
