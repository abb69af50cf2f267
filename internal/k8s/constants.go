package k8s

const (
	// Service account paths - default Kubernetes in-cluster locations
	DefaultServiceAccountPath = "/var/run/secrets/kubernetes.io/serviceaccount"
	DefaultTokenPath          = DefaultServiceAccountPath + "/token"
	DefaultCACertPath         = DefaultServiceAccountPath + "/ca.crt"
	DefaultNamespacePath      = DefaultServiceAccountPath + "/namespace"

	// Default performance settings
	DefaultQPSLimit   = 20.0
	DefaultBurstLimit = 30
	DefaultTimeout    = 30 // seconds

	// ServiceHostEnv is set by the kubelet in every pod.
	ServiceHostEnv = "KUBERNETES_SERVICE_HOST"

	// In-cluster context name
	InClusterContext = "in-cluster"
)

// Operation names checked against the client's safety settings.
const (
	OperationList   = "list"
	OperationLogs   = "logs"
	OperationCreate = "create"
	OperationDelete = "delete"
	OperationScale  = "scale"
)

// Operations lists every operation name the client checks.
var Operations = []string{OperationList, OperationLogs, OperationCreate, OperationDelete, OperationScale}

// destructiveOperations are blocked in non-destructive mode unless the
// client runs in dry-run.
var destructiveOperations = []string{OperationCreate, OperationDelete, OperationScale}
