package graph

import (
	"github.com/graphql-go/graphql"
)

// NewSchema builds the executable schema over r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	queries := graphql.Fields{}
	mutations := graphql.Fields{}
	RegisterQuery(queries, r)
	RegisterMutation(mutations, r)

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queries,
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: mutations,
		}),
	})
}

// RegisterQuery adds every query field to fields.
func RegisterQuery(fields graphql.Fields, r *Resolver) {
	registerUserQueries(fields, r)
	registerTaskQueries(fields, r)
	registerCommunityQueries(fields, r)
}

// RegisterMutation adds every mutation field to fields.
func RegisterMutation(fields graphql.Fields, r *Resolver) {
	registerUserMutations(fields, r)
	registerTaskMutations(fields, r)
	registerCommunityMutations(fields, r)
}

func idArg(name string) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		name: &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
}

func nonNull(t graphql.Input) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)}
}

func optional(t graphql.Input) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: t}
}
