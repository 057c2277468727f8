// Package storage provides S3-compatible object storage for generated
// campaign artifacts.
//
// Objects are addressed by key. Keys produced by Put follow the layout
// {prefix}/{slug-of-name}-{ulid}{ext}, so the display name of a stored file
// can be recovered from its key and two files with the same name never
// collide.
//
// # Basic Usage
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "campaigns",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	info, err := store.Put(ctx, bytes.NewReader(pdf), int64(len(pdf)),
//		storage.WithPrefix("pdfs"),
//		storage.WithName("Offer - Ann Smith"),
//		storage.WithContentType("application/pdf"),
//	)
//
// Overwrite an existing object by passing its key:
//
//	store.Put(ctx, r, size, storage.WithKey(info.Key))
//
// # Listing and soft delete
//
// List returns every object below a prefix, following pagination. Trash
// moves an object below the configured trash prefix instead of deleting it,
// so an accidental cleanup can be undone by moving it back.
//
// # Errors
//
// S3 failures are returned as *OpError carrying the operation and key.
// Match the kind with errors.Is against the package sentinels, for example
// ErrNotFound or ErrAccessDenied.
package storage
