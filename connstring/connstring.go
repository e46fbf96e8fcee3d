// Package connstring parses MongoDB connection strings ("mongodb://...")
// into a structured ConnString, the configuration cluster.WithConnString
// consumes to build a Cluster.
package connstring

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/10gen/mongo-go-driver/internal"
)

// Connect represents the connect mode requested by a "connect" URI option.
type Connect int

// Connect constants.
const (
	AutomaticConnect Connect = iota
	SingleConnect
)

const schemeMongoDB = "mongodb://"

// ConnString is the parsed form of a MongoDB connection string.
type ConnString struct {
	Original string

	AppName                 string
	AuthMechanism           string
	AuthMechanismProperties map[string]string
	AuthSource              string
	Connect                 Connect
	Database                string
	Hosts                   []string
	HeartbeatInterval       time.Duration
	MaxConnIdleTime         time.Duration
	MaxConnLifeTime         time.Duration
	MaxConnsPerHost         uint16
	MaxConnsPerHostSet      bool
	MaxIdleConnsPerHost     uint16
	MaxIdleConnsPerHostSet  bool
	Password                string
	PasswordSet             bool
	ReplicaSet              string
	ServerSelectionTimeout  time.Duration
	Username                string
}

// Parse parses s, a "mongodb://" connection string, into a ConnString.
func Parse(s string) (ConnString, error) {
	cs := ConnString{Original: s}

	if !strings.HasPrefix(s, schemeMongoDB) {
		return cs, internal.NewErrorf(internal.KindFraming, "scheme must be \"mongodb://\"")
	}

	rest := s[len(schemeMongoDB):]

	hostsPart := rest
	var optionsPart string
	if idx := strings.IndexAny(rest, "/"); idx != -1 {
		hostsPart = rest[:idx]
		optionsPart = rest[idx+1:]
	}

	userInfoPart := ""
	if idx := strings.LastIndex(hostsPart, "@"); idx != -1 {
		userInfoPart = hostsPart[:idx]
		hostsPart = hostsPart[idx+1:]
	}

	if userInfoPart != "" {
		if err := parseUserInfo(&cs, userInfoPart); err != nil {
			return cs, err
		}
	}

	if hostsPart == "" {
		return cs, internal.NewErrorf(internal.KindFraming, "connection string must contain at least one host")
	}
	cs.Hosts = strings.Split(hostsPart, ",")

	dbPart := optionsPart
	queryPart := ""
	if idx := strings.IndexByte(optionsPart, '?'); idx != -1 {
		dbPart = optionsPart[:idx]
		queryPart = optionsPart[idx+1:]
	}

	if dbPart != "" {
		db, err := url.QueryUnescape(dbPart)
		if err != nil {
			return cs, internal.WrapAsf(internal.KindFraming, err, "invalid database name %q", dbPart)
		}
		cs.Database = db
	}

	if queryPart != "" {
		if err := parseOptions(&cs, queryPart); err != nil {
			return cs, err
		}
	}

	return cs, nil
}

func parseUserInfo(cs *ConnString, userInfo string) error {
	username := userInfo
	password := ""
	hasPassword := false
	if idx := strings.IndexByte(userInfo, ':'); idx != -1 {
		username = userInfo[:idx]
		password = userInfo[idx+1:]
		hasPassword = true
	}

	u, err := url.QueryUnescape(username)
	if err != nil {
		return internal.WrapAsf(internal.KindFraming, err, "invalid username %q", username)
	}
	cs.Username = u

	if hasPassword {
		p, err := url.QueryUnescape(password)
		if err != nil {
			return internal.WrapAsf(internal.KindFraming, err, "invalid password")
		}
		cs.Password = p
		cs.PasswordSet = true
	}

	return nil
}

func parseOptions(cs *ConnString, query string) error {
	pairs := strings.Split(query, "&")
	for _, pair := range pairs {
		if pair == "" {
			continue
		}

		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return internal.NewErrorf(internal.KindFraming, "invalid option %q: missing value", pair)
		}

		key, err := url.QueryUnescape(kv[0])
		if err != nil {
			return internal.WrapAsf(internal.KindFraming, err, "invalid option name %q", kv[0])
		}
		value, err := url.QueryUnescape(kv[1])
		if err != nil {
			return internal.WrapAsf(internal.KindFraming, err, "invalid option value for %q", key)
		}

		if err := applyOption(cs, strings.ToLower(key), value); err != nil {
			return err
		}
	}

	return nil
}

func applyOption(cs *ConnString, key, value string) error {
	switch key {
	case "appname":
		cs.AppName = value
	case "authsource":
		cs.AuthSource = value
	case "authmechanism":
		cs.AuthMechanism = value
	case "authmechanismproperties":
		props, err := parseAuthMechanismProperties(value)
		if err != nil {
			return err
		}
		cs.AuthMechanismProperties = props
	case "connect":
		switch strings.ToLower(value) {
		case "direct", "single":
			cs.Connect = SingleConnect
		case "automatic", "replicaset", "":
			cs.Connect = AutomaticConnect
		default:
			return internal.NewErrorf(internal.KindFraming, "invalid connect value %q", value)
		}
	case "replicaset":
		cs.ReplicaSet = value
	case "heartbeatfrequencyms":
		d, err := parseMillisOption(value)
		if err != nil {
			return err
		}
		cs.HeartbeatInterval = d
	case "serverselectiontimeoutms":
		d, err := parseMillisOption(value)
		if err != nil {
			return err
		}
		cs.ServerSelectionTimeout = d
	case "maxidletimems":
		d, err := parseMillisOption(value)
		if err != nil {
			return err
		}
		cs.MaxConnIdleTime = d
	case "maxconnlifetimems":
		d, err := parseMillisOption(value)
		if err != nil {
			return err
		}
		cs.MaxConnLifeTime = d
	case "maxpoolsize":
		n, err := parseUint16Option(value)
		if err != nil {
			return err
		}
		cs.MaxConnsPerHost = n
		cs.MaxConnsPerHostSet = true
	case "minpoolsize":
		n, err := parseUint16Option(value)
		if err != nil {
			return err
		}
		cs.MaxIdleConnsPerHost = n
		cs.MaxIdleConnsPerHostSet = true
	default:
		// Unrecognized options are ignored rather than rejected: the
		// URI spec requires clients to tolerate options they don't
		// implement.
	}

	return nil
}

func parseAuthMechanismProperties(value string) (map[string]string, error) {
	props := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return nil, internal.NewErrorf(internal.KindFraming, "invalid authMechanismProperties entry %q", pair)
		}
		props[kv[0]] = kv[1]
	}
	return props, nil
}

func parseMillisOption(value string) (time.Duration, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, internal.WrapAsf(internal.KindFraming, err, "invalid duration option value %q", value)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func parseUint16Option(value string) (uint16, error) {
	n, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0, internal.WrapAsf(internal.KindFraming, err, "invalid numeric option value %q", value)
	}
	return uint16(n), nil
}

func (cs ConnString) String() string {
	return fmt.Sprintf("mongodb://%s/%s", strings.Join(cs.Hosts, ","), cs.Database)
}
