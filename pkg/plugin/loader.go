// Package plugin implements Afed's plug-in loader contract (spec.md §6):
// a plug-in is a dynamically loaded collaborator exporting a name, a
// version, and a Package tree. The teacher's own lib/grpc and lib/proto
// built-ins (internal/evaluator/builtins_grpc.go) already talk to a remote
// process entirely through jhump/protoreflect's protoparse+dynamic
// packages at runtime, with no protoc codegen step; Afed's plug-ins are
// implemented the same way, described by plugin.proto (embedded below)
// instead of a caller-supplied one, since the wire contract here is fixed
// by the host rather than per-service like the teacher's generic RPC
// bridge.
package plugin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/jhump/protoreflect/grpcdynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	_ "embed"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/config"
	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
)

//go:embed plugin.proto
var protoSource string

var serviceDesc *desc.ServiceDescriptor

func fileDescriptor() (*desc.FileDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{"plugin.proto": protoSource}),
	}
	fds, err := parser.ParseFiles("plugin.proto")
	if err != nil {
		return nil, fmt.Errorf("parsing plugin.proto: %w", err)
	}
	return fds[0], nil
}

func service() (*desc.ServiceDescriptor, error) {
	if serviceDesc != nil {
		return serviceDesc, nil
	}
	fd, err := fileDescriptor()
	if err != nil {
		return nil, err
	}
	sd := fd.FindService("afed.plugin.PluginService")
	if sd == nil {
		return nil, fmt.Errorf("plugin.proto: PluginService not found")
	}
	serviceDesc = sd
	return sd, nil
}

// Session is one loaded plug-in process: a gRPC connection plus the
// host-assigned identity every TypeIdentity comparison is scoped to, so two
// separately loaded plug-ins (even of the same binary) never compare equal.
type Session struct {
	id   string
	conn *grpc.ClientConn
	stub grpcdynamic.Stub
	sd   *desc.ServiceDescriptor
}

// Load connects to target (a "host:port" gRPC address, per spec.md §6's
// "dynamically loaded file" — Afed plug-ins are out-of-process services
// speaking the fixed PluginService contract, matching the teacher's own
// connect-then-invoke pattern for lib/grpc) and runs the Describe RPC,
// version-checking and wrapping the result into a pkgbuild.Package.
func Load(ctx context.Context, target string) (*pkgbuild.Package, error) {
	sd, err := service()
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, &aerr.IOError{Path: target, Err: err}
	}
	sess := &Session{id: uuid.NewString(), conn: conn, stub: grpcdynamic.NewStub(conn), sd: sd}

	method := sd.FindMethodByName("Describe")
	req := dynamic.NewMessage(method.GetInputType())
	req.SetFieldByName("session_id", sess.id)

	resp, err := sess.stub.InvokeRpc(ctx, method, req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("plugin %s: Describe failed: %w", target, err)
	}
	respMsg, ok := resp.(*dynamic.Message)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("plugin %s: unexpected Describe response type", target)
	}

	name, _ := respMsg.GetFieldByName("name").(string)
	version, _ := respMsg.GetFieldByName("version").(string)
	if version != config.ProtocolVersion {
		conn.Close()
		return nil, fmt.Errorf("plugin %s declares protocol version %s, host expects %s", name, version, config.ProtocolVersion)
	}

	treeMsg, _ := respMsg.GetFieldByName("tree").(*dynamic.Message)
	tree := sess.decodeValue(treeMsg)

	globals := map[string]engine.Value{}
	if m, ok := tree.(engine.Map); ok {
		for _, gname := range asStringSlice(respMsg.GetFieldByName("global_names")) {
			if v, found := m.Attr(gname); found {
				globals[gname] = v
			}
		}
	}

	return &pkgbuild.Package{Name: name, Version: version, Tree: tree, Globals: globals}, nil
}

func asStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// decodeValue converts one wire Value message into an engine.Value,
// recursing into arrays/maps and turning a FunctionRef leaf into a
// PluginValue that calls back into this session via the Call RPC —
// the inverse of the teacher's dynamicMessageToObject.
func (s *Session) decodeValue(msg *dynamic.Message) engine.Value {
	if msg == nil {
		return engine.Null{}
	}
	switch {
	case msg.HasFieldName("bool_value"):
		b, _ := msg.GetFieldByName("bool_value").(bool)
		return engine.Bool{Value: b}
	case msg.HasFieldName("number_value"):
		f, _ := msg.GetFieldByName("number_value").(float64)
		return engine.NewReal(f)
	case msg.HasFieldName("string_value"):
		str, _ := msg.GetFieldByName("string_value").(string)
		return engine.String{Value: str}
	case msg.HasFieldName("error_value"):
		errStr, _ := msg.GetFieldByName("error_value").(string)
		return engine.WrapError(fmt.Errorf("%s", errStr))
	case msg.HasFieldName("array_value"):
		arrMsg, _ := msg.GetFieldByName("array_value").(*dynamic.Message)
		return s.decodeArray(arrMsg)
	case msg.HasFieldName("map_value"):
		mapMsg, _ := msg.GetFieldByName("map_value").(*dynamic.Message)
		return s.decodeMap(mapMsg)
	case msg.HasFieldName("function_ref"):
		refMsg, _ := msg.GetFieldByName("function_ref").(*dynamic.Message)
		return s.decodeFunctionRef(refMsg)
	}
	return engine.Null{}
}

func (s *Session) decodeArray(msg *dynamic.Message) engine.Value {
	if msg == nil {
		return engine.NewArray(nil)
	}
	items, _ := msg.GetFieldByName("items").([]interface{})
	elems := make([]engine.Value, 0, len(items))
	for _, it := range items {
		if m, ok := it.(*dynamic.Message); ok {
			elems = append(elems, s.decodeValue(m))
		}
	}
	return engine.NewArray(elems)
}

func (s *Session) decodeMap(msg *dynamic.Message) engine.Value {
	m := engine.NewMap()
	if msg == nil {
		return m
	}
	entries, _ := msg.GetFieldByName("entries").([]interface{})
	for _, e := range entries {
		entry, ok := e.(*dynamic.Message)
		if !ok {
			continue
		}
		key, _ := entry.GetFieldByName("key").(string)
		valMsg, _ := entry.GetFieldByName("value").(*dynamic.Message)
		m = m.Put(key, s.decodeValue(valMsg))
	}
	return m
}

func (s *Session) decodeFunctionRef(msg *dynamic.Message) engine.Value {
	name, _ := msg.GetFieldByName("name").(string)
	arity, _ := msg.GetFieldByName("arity").(int32)
	help, _ := msg.GetFieldByName("help").(string)

	identity := engine.NewTypeIdentity("plugin.Func", s.id+"/"+name)
	return &engine.PluginValue{
		TypeName: "plugin function",
		Identity: identity,
		Payload:  name,
		Methods: engine.HostMethods{
			Arity: func(attr string, self *engine.PluginValue) (int, bool) {
				if attr == "" {
					return int(arity), true
				}
				return 0, false
			},
			Help: func(attr string, self *engine.PluginValue) (string, bool) {
				if attr == "" {
					return help, true
				}
				return "", false
			},
			Call: func(attr string, self *engine.PluginValue, args []engine.Value) engine.Value {
				if attr != "" {
					return engine.NewError("no such attribute %s on plugin function %s", attr, name)
				}
				return s.call(name, args)
			},
			Display: func(self *engine.PluginValue) string { return name },
			Equal: func(self *engine.PluginValue, other engine.Value) bool {
				o, ok := other.(*engine.PluginValue)
				return ok && o.Identity.Equal(self.Identity)
			},
		},
	}
}

// call performs the Call RPC for a remote function previously described by
// a FunctionRef, encoding args and decoding the result back through the
// same Value wire format used for Describe.
func (s *Session) call(name string, args []engine.Value) engine.Value {
	method := s.sd.FindMethodByName("Call")
	req := dynamic.NewMessage(method.GetInputType())
	req.SetFieldByName("session_id", s.id)
	req.SetFieldByName("name", name)

	wireArgs := make([]*dynamic.Message, len(args))
	for i, a := range args {
		wireArgs[i] = s.encodeValue(a, method.GetInputType().FindFieldByName("args").GetMessageType())
	}
	ifaceArgs := make([]interface{}, len(wireArgs))
	for i, a := range wireArgs {
		ifaceArgs[i] = a
	}
	req.SetFieldByName("args", ifaceArgs)

	resp, err := s.stub.InvokeRpc(context.Background(), method, req)
	if err != nil {
		return engine.WrapError(fmt.Errorf("plugin call %s: %w", name, err))
	}
	respMsg, ok := resp.(*dynamic.Message)
	if !ok {
		return engine.NewError("plugin call %s: unexpected response type", name)
	}
	resultMsg, _ := respMsg.GetFieldByName("result").(*dynamic.Message)
	return s.decodeValue(resultMsg)
}

// encodeValue is the inverse of decodeValue: builds a wire Value message
// from an engine.Value, mirroring the teacher's objectToDynamicMessage.
func (s *Session) encodeValue(v engine.Value, valueType *desc.MessageDescriptor) *dynamic.Message {
	msg := dynamic.NewMessage(valueType)
	switch t := v.(type) {
	case engine.Null:
		msg.SetFieldByName("is_null", true)
	case engine.Bool:
		msg.SetFieldByName("bool_value", t.Value)
	case engine.Number:
		msg.SetFieldByName("number_value", t.Float())
	case engine.String:
		msg.SetFieldByName("string_value", t.Value)
	case engine.Array:
		arrType := valueType.FindFieldByName("array_value").GetMessageType()
		arrMsg := dynamic.NewMessage(arrType)
		itemType := arrType.FindFieldByName("items").GetMessageType()
		items := make([]interface{}, len(t.Elems))
		for i, e := range t.Elems {
			items[i] = s.encodeValue(e, itemType)
		}
		arrMsg.SetFieldByName("items", items)
		msg.SetFieldByName("array_value", arrMsg)
	case engine.Map:
		mapType := valueType.FindFieldByName("map_value").GetMessageType()
		mapMsg := dynamic.NewMessage(mapType)
		entryType := mapType.FindFieldByName("entries").GetMessageType()
		var entries []interface{}
		for _, k := range t.Keys() {
			val, _ := t.Attr(k)
			entryMsg := dynamic.NewMessage(entryType)
			entryMsg.SetFieldByName("key", k)
			entryMsg.SetFieldByName("value", s.encodeValue(val, valueType))
			entries = append(entries, entryMsg)
		}
		mapMsg.SetFieldByName("entries", entries)
		msg.SetFieldByName("map_value", mapMsg)
	case *engine.ErrorValue:
		msg.SetFieldByName("error_value", t.Display())
	default:
		msg.SetFieldByName("error_value", fmt.Sprintf("value of kind %s cannot cross the plug-in boundary", v.Kind()))
	}
	return msg
}

// Close releases the underlying gRPC connection.
func (s *Session) Close() error { return s.conn.Close() }
