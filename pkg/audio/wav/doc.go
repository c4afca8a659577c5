// ABOUTME: WAV container encoding and decoding
// ABOUTME: Round-trips normalized buffers through 16-bit PCM RIFF files
// Package wav reads and writes 16-bit PCM WAV files.
//
// The encoder always emits the canonical 44-byte layout: a RIFF header,
// a 16-byte fmt chunk, and a single data chunk. The decoder is more
// permissive and accepts any chunk layout where fmt precedes data,
// skipping chunks it does not recognize.
//
// Encode and Decode use the shared sample mapping from the audio
// package, so a decode of an encode reproduces every sample within
// 1/32768 of the original.
package wav
