// Package tonnage keeps the FRED truck tonnage series (TRUCKD11) mirrored in
// an S3 bucket and reports which assets changed.
//
// Each run downloads the series in every supported format variant (.xls and
// .csv) concurrently, compares each download against the stored copy by
// content fingerprint, uploads only what changed and removes the transient
// local files. The result is the list of asset sources a downstream publishing
// step needs; an empty list means nothing changed and no republish is needed.
//
// Example usage:
//
//	syncer, err := tonnage.New(ctx, tonnagetypes.Config{
//	    DatasetName: "TRUCKD11",
//	    Bucket:      "my-data-bucket",
//	}, tonnage.WithLogger(slog.Default()))
//	if err != nil {
//	    return err
//	}
//
//	assets, err := syncer.Sync(ctx)
//	if err != nil {
//	    return err
//	}
//	if len(assets) > 0 {
//	    // republish using assets
//	}
package tonnage
