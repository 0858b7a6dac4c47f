// Package display models the seven segment display controller of a Nexys4
// class board: a tick generator, a seven segment decoder, an eight digit
// multiplex driver and the register front end through which a processor
// updates the digits.
//
// The controller is built from segsim parts (see Display) and runs inside a
// Device, which drives its write bus and samples its outputs once per clock
// cycle. Model is a plain Go implementation of the same controller used to
// check the circuit.
//
// All outputs are active high. Board polarity is applied by the board package.
package display
