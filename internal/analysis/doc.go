// Package analysis inspects recorded bicycle runs.
//
//   - [NewPhasePortrait]: any two sensors against each other, e.g. roll
//     against roll rate
//   - [NewPoincareSection]: samples taken each time a sensor crosses a level
//   - [RollSpectrum]: power spectrum of a sensor series and its dominant
//     frequency
//   - [Describe]: mean, spread and RMS of a series
//
// Portraits and sections render to ASCII with [PhasePortraitToASCII].
package analysis
