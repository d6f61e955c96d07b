// Package spectrum provides frequency-domain measurement helpers.
//
// Two complementary tools are available. Goertzel evaluates exact,
// arbitrary-frequency lines and is the precise way to measure a carrier or
// a single sideband. Analyzer computes full windowed FFT magnitude spectra
// for broadband inspection of modulated blocks.
package spectrum
