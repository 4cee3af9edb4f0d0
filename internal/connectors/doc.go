// Package connectors holds the sources that feed documents into insight
// without going through the HTTP upload. The filesystem connector watches a
// local folder for PDFs.
package connectors
