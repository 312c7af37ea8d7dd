/*
Package version packs and unpacks the configuration format version.

A version is three parts folded into one decimal integer:

	major   minor   revision
	┌──┐    ┌──┐    ┌────┐
	12      34      5678      →  12_34_5678  =  12345678

major and minor take two digits each, revision four. Build and Split are
exact inverses over the whole range [0, 99_999_999]; anything outside it is
rejected with ErrOutOfRange rather than truncated.

The stored configuration carries this number in its "version" key. Loaders
use Compatible to decide whether a snapshot can be read as is, and the
upgrade package stamps Current after migrating older data.
*/
package version
