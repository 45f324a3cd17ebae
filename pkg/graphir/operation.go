package graphir

// OperationType is one of HAR's closed enumeration of semantic verbs, or
// the open "tool.<name>" passthrough variant for unmapped constructs.
type OperationType string

// Closed enumeration of IR verbs. Parsers normalize every
// source-dialect verb onto one of these, or fall back to a passthrough
// "tool.<verb>" OperationType built with Passthrough.
const (
	OpPackageInstall           OperationType = "package_install"
	OpPackageUpgrade           OperationType = "package_upgrade"
	OpPackageRemove            OperationType = "package_remove"
	OpServiceStart             OperationType = "service_start"
	OpServiceStop              OperationType = "service_stop"
	OpServiceRestart           OperationType = "service_restart"
	OpServiceEnable            OperationType = "service_enable"
	OpFileWrite                OperationType = "file_write"
	OpDirectory                OperationType = "directory"
	OpFileDelete               OperationType = "file_delete"
	OpUserCreate               OperationType = "user_create"
	OpUserRemove               OperationType = "user_remove"
	OpGroupCreate              OperationType = "group_create"
	OpCommandRun               OperationType = "command_run"
	OpCronCreate               OperationType = "cron_create"
	OpMountPoint               OperationType = "mount_point"
	OpComputeInstanceCreate    OperationType = "compute_instance_create"
	OpStorageBucketCreate      OperationType = "storage_bucket_create"
	OpFirewallRule             OperationType = "firewall_rule"
	OpNetworkCreate            OperationType = "network_create"
	OpLoadBalancerCreate       OperationType = "load_balancer_create"
	OpDNSRecordCreate          OperationType = "dns_record_create"
	OpContainerDeploymentCreate OperationType = "container_deployment_create"
	OpContainerServiceCreate   OperationType = "container_service_create"
	OpConfigMapCreate          OperationType = "config_map_create"
	OpSecretCreate             OperationType = "secret_create"
	OpNamespaceCreate          OperationType = "namespace_create"
	OpIngressRule              OperationType = "ingress_rule"
	OpAutoscalePolicy          OperationType = "autoscale_policy"
	OpVolumeCreate             OperationType = "volume_create"
	OpDatabaseCreate           OperationType = "database_create"
	OpArchiveExtract           OperationType = "archive_extract"
	OpGitCheckout              OperationType = "git_checkout"
	OpNotifyHandler            OperationType = "notify_handler"
)

// passthroughPrefix marks an IR type as an unmapped source-dialect verb
// carried through opaquely as "tool.<name>".
const passthroughPrefix = "tool."

// Passthrough builds the open passthrough OperationType for a
// dialect-specific verb that has no canonical IR peer.
func Passthrough(verb string) OperationType {
	return OperationType(passthroughPrefix + verb)
}

// IsPassthrough reports whether t is a "tool.<verb>" passthrough type.
func (t OperationType) IsPassthrough() bool {
	return len(t) > len(passthroughPrefix) && string(t[:len(passthroughPrefix)]) == passthroughPrefix
}

// Operation is a vertex in the Semantic Graph.
type Operation struct {
	ID       string
	Type     OperationType
	Params   map[string]interface{}
	Target   map[string]interface{}
	Metadata map[string]interface{}
}

// NewOperation constructs an Operation with initialized maps.
func NewOperation(id string, typ OperationType) *Operation {
	return &Operation{
		ID:       id,
		Type:     typ,
		Params:   map[string]interface{}{},
		Target:   map[string]interface{}{},
		Metadata: map[string]interface{}{},
	}
}

// TargetString fetches a string-valued target field (os, arch,
// environment, device_type, provider, region, namespace, ...), returning
// "" if absent or not a string.
func (op *Operation) TargetString(key string) string {
	v, ok := op.Target[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ParamString fetches a string-valued param, returning "" if absent or
// not a string.
func (op *Operation) ParamString(key string) string {
	v, ok := op.Params[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// requiredParams lists, per OperationType, the Params keys that must be
// present for the operation to satisfy invariant 4. Types not
// listed here have no required params.
var requiredParams = map[OperationType][]string{
	OpPackageInstall: {"package"},
	OpPackageUpgrade: {"package"},
	OpPackageRemove:  {"package"},
	OpServiceStart:   {"service"},
	OpServiceStop:    {"service"},
	OpServiceRestart: {"service"},
	OpUserCreate:     {"username"},
	OpCommandRun:     {"command"},
	OpCronCreate:     {"command", "schedule"},
}

// oneOfParams lists, per OperationType, sets of Params keys of which at
// least one must be present (e.g. file_write needs path and one of
// content/source).
var oneOfParams = map[OperationType][][]string{
	OpFileWrite: {{"path"}, {"content", "source"}},
}

// ValidateParams checks an Operation against its per-type required and
// one-of parameter rules. It does not know about the rest of the Graph;
// Graph.Validate calls this for every vertex.
func (op *Operation) ValidateParams() (bool, string) {
	for _, key := range requiredParams[op.Type] {
		if _, ok := op.Params[key]; !ok {
			return false, "missing required param " + key
		}
	}
	for _, group := range oneOfParams[op.Type] {
		satisfied := false
		for _, key := range group {
			if _, ok := op.Params[key]; ok {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false, "missing one of " + joinOr(group)
		}
	}
	return true, ""
}

func joinOr(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "/"
		}
		out += k
	}
	return out
}
