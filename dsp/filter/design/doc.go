// Package design provides RBJ Audio-EQ-Cookbook biquad coefficient designers.
//
// All designers share the standard parameterisation w0 = 2*pi*f0/fs and
// alpha = sin(w0)/(2*Q); gain forms use A = 10^(gainDB/40). Coefficients are
// normalised so a0 = 1 before being returned. Out-of-range parameters are
// rejected with an error wrapping [ErrInvalidCoefficient]; design happens at
// setup time only, never on the audio path.
package design
