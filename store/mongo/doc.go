// Package mongo implements store.Store using the official MongoDB driver.
// Suitable for distributed deployments requiring horizontal scaling and
// flexible schema evolution.
//
// The caller owns the *mongo.Client lifecycle -- the store never closes it.
// Pass the database handle through the constructor:
//
//	import (
//	    mongod "go.mongodb.org/mongo-driver/v2/mongo"
//	    mongostore "github.com/tesserahq/chrona/store/mongo"
//	)
//
//	client, _ := mongod.Connect(options.Client().ApplyURI(uri))
//	store := mongostore.New(client.Database("chrona"))
//	store.Migrate(ctx)
package mongo
