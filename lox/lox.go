package lox

// BuiltinClock is the name of the native clock function exposed to Lox programs.
const BuiltinClock = "clock"
