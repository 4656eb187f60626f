package graphflow

// Version is the graphflow release version.
const Version = "0.1.0"
