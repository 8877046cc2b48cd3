package repository

import "net/http"

// RoundTripperFunc lets tests stand in for the Open-Meteo endpoints without a listener.
type RoundTripperFunc func(*http.Request) *http.Response

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}
