package ui

// The Color* helpers return the escape code of the active theme for each
// category, or "" when colors are disabled.

// ColorReset returns the code that clears formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorBold returns the bold code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorPrimary returns the accent color.
func ColorPrimary() string { return GetCurrentTheme().Primary }

// ColorDim returns the secondary color.
func ColorDim() string { return GetCurrentTheme().Secondary }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorCyan returns the info color.
func ColorCyan() string { return GetCurrentTheme().Info }
