// Package imaging normalizes uploaded pictures: any registered format in,
// a fixed-size PNG out.
package imaging
