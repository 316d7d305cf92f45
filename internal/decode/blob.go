package decode

import (
	"encoding/xml"
	"fmt"
)

// ContainerItem is one entry in a listContainers result.
type ContainerItem struct {
	Name     string
	Metadata map[string]string
}

// ListContainersResult is the parsed listContainers response (SPEC_FULL.md
// Blob decoder contracts — structurally isomorphic to ListQueues).
type ListContainersResult struct {
	Prefix     string
	Marker     string
	MaxResults int
	NextMarker string
	Containers []ContainerItem
}

type xmlContainerList struct {
	XMLName    xml.Name `xml:"EnumerationResults"`
	Prefix     string   `xml:"Prefix"`
	Marker     string   `xml:"Marker"`
	MaxResults int      `xml:"MaxResults"`
	NextMarker string   `xml:"NextMarker"`
	Containers struct {
		Container []struct {
			Name     string      `xml:"Name"`
			Metadata rawMetadata `xml:"Metadata"`
		} `xml:"Container"`
	} `xml:"Containers"`
}

// ListContainers parses the listContainers response body.
func ListContainers(payload []byte) (*ListContainersResult, error) {
	var raw xmlContainerList
	if err := xml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode: parsing listContainers response: %w", err)
	}

	res := &ListContainersResult{
		Prefix:     raw.Prefix,
		Marker:     raw.Marker,
		MaxResults: raw.MaxResults,
		NextMarker: raw.NextMarker,
	}
	for _, c := range raw.Containers.Container {
		res.Containers = append(res.Containers, ContainerItem{Name: c.Name, Metadata: map[string]string(c.Metadata)})
	}
	return res, nil
}

// BlobItem is one entry in a listBlobs result. Properties holds the raw
// Blob Properties element children (Content-Length, Last-Modified, Etag,
// ...) as strings; callers that need typed access parse the specific keys
// they use.
type BlobItem struct {
	Name       string
	Properties map[string]string
}

// ListBlobsResult is the parsed listBlobs response.
type ListBlobsResult struct {
	Prefix     string
	Marker     string
	MaxResults int
	NextMarker string
	Blobs      []BlobItem
}

type xmlBlobList struct {
	XMLName    xml.Name `xml:"EnumerationResults"`
	Prefix     string   `xml:"Prefix"`
	Marker     string   `xml:"Marker"`
	MaxResults int      `xml:"MaxResults"`
	NextMarker string   `xml:"NextMarker"`
	Blobs      struct {
		Blob []struct {
			Name       string      `xml:"Name"`
			Properties rawMetadata `xml:"Properties"`
		} `xml:"Blob"`
	} `xml:"Blobs"`
}

// ListBlobs parses the listBlobs response body.
func ListBlobs(payload []byte) (*ListBlobsResult, error) {
	var raw xmlBlobList
	if err := xml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode: parsing listBlobs response: %w", err)
	}

	res := &ListBlobsResult{
		Prefix:     raw.Prefix,
		Marker:     raw.Marker,
		MaxResults: raw.MaxResults,
		NextMarker: raw.NextMarker,
	}
	for _, b := range raw.Blobs.Blob {
		res.Blobs = append(res.Blobs, BlobItem{Name: b.Name, Properties: map[string]string(b.Properties)})
	}
	return res, nil
}
