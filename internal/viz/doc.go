// Package viz renders run output for the terminal: asciigraph line plots of
// probe series and spectra, braille phase portraits and lipgloss styles.
package viz
