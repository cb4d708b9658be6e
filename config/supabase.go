package config

import (
	"fmt"
	"os"

	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

// InitSupabase initializes the Supabase client using environment variables.
// Both SUPABASE_URL and SUPABASE_SERVICE_KEY are required; uploads go to a
// service-role bucket, so there is no usable anonymous-key fallback.
func InitSupabase() error {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_SERVICE_KEY")

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("missing Supabase environment variables (SUPABASE_URL, SUPABASE_SERVICE_KEY)")
	}

	client, err := supa.NewClient(supabaseURL, supabaseKey, nil)
	if err != nil {
		return fmt.Errorf("error initializing Supabase client: %w", err)
	}

	SupabaseClient = client
	return nil
}

// GetSupabaseURL returns the Supabase project URL used to compose public
// object URLs.
func GetSupabaseURL() string {
	return os.Getenv("SUPABASE_URL")
}
