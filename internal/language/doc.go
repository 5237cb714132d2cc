// Package language normalises language codes supplied on the command line or
// web form and reports which ones the voice model can speak.
package language
