package story

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/daymxn/story.Version=...".
var Version = "dev"
