package mnist

// Resource One of the four files MNIST is distributed as
type Resource int

const (
	TrainImages Resource = iota
	TrainLabels
	TestImages
	TestLabels
)

// Resources Every resource in the order Dataset is assembled from
var Resources = [...]Resource{TrainImages, TrainLabels, TestImages, TestLabels}

// Filename Name of the gzip-compressed file both on the remote origin and in the local cache
func (r Resource) Filename() string {
	switch r {
	case TrainImages:
		return "train-images-idx3-ubyte.gz"
	case TrainLabels:
		return "train-labels-idx1-ubyte.gz"
	case TestImages:
		return "t10k-images-idx3-ubyte.gz"
	case TestLabels:
		return "t10k-labels-idx1-ubyte.gz"
	default:
		return ""
	}
}

func (r Resource) String() string {
	switch r {
	case TrainImages:
		return "train images"
	case TrainLabels:
		return "train labels"
	case TestImages:
		return "test images"
	case TestLabels:
		return "test labels"
	default:
		return "unknown resource"
	}
}

func (r Resource) isImages() bool {
	return r == TrainImages || r == TestImages
}

// expectedRecords Record count of canonical dataset
func (r Resource) expectedRecords() int {
	if r == TrainImages || r == TrainLabels {
		return 60000
	}
	return 10000
}

// State Whether resource is present in local cache
type State int

const (
	Missing State = iota
	Cached
)

func (s State) String() string {
	if s == Cached {
		return "cached"
	}
	return "missing"
}
