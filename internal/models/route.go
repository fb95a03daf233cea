package models

// Route is a named origin→destination pair within a city. Routes come from
// configuration and are never mutated at runtime.
type Route struct {
	Name        string `mapstructure:"name" json:"name"`
	Origin      string `mapstructure:"origin" json:"origin"`
	Destination string `mapstructure:"destination" json:"destination"`
	City        string `mapstructure:"city" json:"city"`
}
