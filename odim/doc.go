// Package odim converts ODIM_H5 vertical profile products from schema
// version 2.2 to version 2.1.
//
// The package works on an in-memory [Tree] of groups, attributes and
// datasets addressed by absolute slash-delimited paths. A reader tree is
// built from an HDF5 file with [Load]; a [Converter] maps it onto a new
// writer tree that follows the 2.1 layout; [Store] serialises the result
// with deflate compressed datasets.
//
// # Conversion
//
//	tree, err := odim.Load("profile_v22.h5")
//	if err != nil {
//	    return err
//	}
//	conv := odim.NewConverter(tree)
//	res, err := conv.Convert("NV,DBZH,DBZH_dev", "profile_v21.h5")
//	if err != nil {
//	    return err
//	}
//	err = odim.Store(res.Tree, res.Filename)
//
// Only vertical profiles (/what/object = "VP") are supported. The output
// always carries /Conventions = "ODIM_H5/V2_1" and /what/version =
// "H5rad 2.1". Requested quantities are written to /dataset1/data1,
// /dataset1/data2, ... in request order, whatever their position in the
// input file.
//
// # Quantity Lookup
//
// Quantities are resolved by scanning the numbered /datasetN/dataM group
// families for a matching what/quantity attribute. Numbering must be
// contiguous from 1: the first missing datasetN ends the whole search and
// the first missing dataM moves on to the next datasetN. See [Locator].
//
// # Element Types
//
// Dataset element types carry a tag. Trees produced by [Load] use the Go
// numeric names (int8, uint8, ..., float64); converted trees use the
// HDF5 C names of the 2.1 toolchain (char, uchar, short, ..., double).
// [TranslateType] maps the former onto the latter. The array payload is
// never modified.
package odim
