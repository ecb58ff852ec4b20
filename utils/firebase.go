package utils

import (
	"context"
	"log"
	"sync"

	"nestly/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	firebaseStorage "firebase.google.com/go/v4/storage"
)

var (
	firebaseOnce sync.Once
	FirebaseApp  *firebase.App

	FirebaseAuth    *auth.Client
	FCMClient       *messaging.Client
	FirestoreClient *firestore.Client
	FirebaseStorage *firebaseStorage.Client
)

// GetFirebaseApp initializes the Firebase App once.
func GetFirebaseApp() *firebase.App {
	firebaseOnce.Do(func() {
		app, err := firebase.NewApp(context.Background(), config.FirebaseAppConfig(), config.FirebaseClientOptions()...)
		if err != nil {
			log.Fatalf("firebase: error initializing app: %v", err)
		}
		FirebaseApp = app
	})
	return FirebaseApp
}

// GetFirebaseAuth returns the Firebase Auth client.
func GetFirebaseAuth() *auth.Client {
	if FirebaseAuth == nil {
		client, err := GetFirebaseApp().Auth(context.Background())
		if err != nil {
			log.Fatalf("firebase: error getting Auth client: %v", err)
		}
		FirebaseAuth = client
	}
	return FirebaseAuth
}

// GetFCMClient returns the Firebase Messaging client.
func GetFCMClient() *messaging.Client {
	if FCMClient == nil {
		client, err := GetFirebaseApp().Messaging(context.Background())
		if err != nil {
			log.Fatalf("firebase: error getting Messaging client: %v", err)
		}
		FCMClient = client
	}
	return FCMClient
}

// GetFirestoreClient returns the Firestore client.
func GetFirestoreClient() *firestore.Client {
	if FirestoreClient == nil {
		client, err := GetFirebaseApp().Firestore(context.Background())
		if err != nil {
			log.Fatalf("firebase: error getting Firestore client: %v", err)
		}
		FirestoreClient = client
	}
	return FirestoreClient
}

// GetFirebaseStorage returns the Firebase Storage client.
func GetFirebaseStorage() *firebaseStorage.Client {
	if FirebaseStorage == nil {
		client, err := GetFirebaseApp().Storage(context.Background())
		if err != nil {
			log.Fatalf("firebase: error getting Storage client: %v", err)
		}
		FirebaseStorage = client
	}
	return FirebaseStorage
}
