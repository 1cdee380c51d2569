package main

// Version is overridden at build time with -ldflags.
var Version = "0.0.0-dev"
