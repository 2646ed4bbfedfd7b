// ABOUTME: Version information for modbridge
// ABOUTME: Product identity reported by -version and in logs
package version

const (
	// Version is the current release
	Version = "0.3.0"

	// Product is the program name
	Product = "modbridge"

	// Manufacturer is the maintainer
	Manufacturer = "modbridge contributors"
)

// String returns the product and version
func String() string {
	return Product + " " + Version
}
