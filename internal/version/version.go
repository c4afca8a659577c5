// ABOUTME: Version constants for the Intone text-to-speech player
// ABOUTME: Single place to bump release and identity strings
package version

const (
	// Version is the current release
	Version = "0.1.0"

	// Product is the user-facing application name
	Product = "Intone"

	// Manufacturer identifies the project in logs and exports
	Manufacturer = "Intone Audio"
)
