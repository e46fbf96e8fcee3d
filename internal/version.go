package internal

// Version is the driver's version, reported to the server as part of
// the client metadata document sent on connection handshake.
const Version = "0.1.0"
