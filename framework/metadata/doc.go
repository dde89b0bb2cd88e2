// Package metadata is the registry connecting controller declarations to
// runtime behavior.
//
// In Nest, decorators mutate a hidden reflection store at class-load time.
// Go has no decorators, so the same facts are declared through explicit
// builders against a Registry owned by the application context. The contract
// is unchanged: declare once, read at bootstrap.
//
//	func (uc *UsersController) Describe(b *metadata.ControllerBuilder) {
//	    b.Prefix("/users").Tags("users")       // @Controller('users'), @ApiTags
//	    b.Guard(authGuard)                     // @UseGuards on the class
//
//	    b.Get("/{id}", "Show", uc.Show).       // @Get(':id')
//	        PathParam(0, "id").                // @Param('id')
//	        Summary("Fetch one user")
//
//	    b.Post("/", "Create", uc.Create).      // @Post()
//	        Body(0, &CreateUserInput{}).       // @Body()
//	        Pipe(pipes.Validation())
//	}
//
// Declarations are additive: re-declaring the same handler name continues on
// the same descriptor and appends to its lists, never discarding what an
// earlier call stored.
package metadata
