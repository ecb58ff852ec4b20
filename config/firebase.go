package config

import (
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirebaseAppConfig returns the app settings shared by every Firebase client.
func FirebaseAppConfig() *firebase.Config {
	return &firebase.Config{
		ProjectID:     AppConfig.FirebaseProjectID,
		StorageBucket: AppConfig.FirebaseBucket,
	}
}

// FirebaseClientOptions returns the credentials used to talk to Google APIs.
// With no credentials file configured the application default credentials apply.
func FirebaseClientOptions() []option.ClientOption {
	if AppConfig.FirebaseCredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(AppConfig.FirebaseCredentialsFile)}
}
