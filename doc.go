/*
Package segsim provides a cycle based register-transfer simulator used to model
the seven-segment display controller found in the display package.

A circuit is built from parts connected by named wires. Unlike a gate level
simulator, every wire carries a word of 1 to 64 bits, so a 4 bit digit value or
an 8 bit chip-select bus is a single wire.

Each simulation step, every component reads the current wire frame and writes
the next one. Frames are swapped once all components have run, which gives
the usual synchronous semantics: reads see the state of the previous step,
writes land for the next one.

The API is designed to mimmic a real hardware description language. As a
result, it relies heavily on closures and can feel a bit awkward when
implementing custom components.
*/
package segsim
