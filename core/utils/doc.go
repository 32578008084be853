// Package utils provides common utility functions for the modaudit
// application: value classification shared by the extractor (does a property
// value name another definition?) and the conflict classifier (value
// equality normalization).
package utils
